package api

import (
	"context"
	"time"

	"github.com/lysyi3m/notion-feed/app/feed"
)

type PipelineInterface interface {
	Run(ctx context.Context) []feed.NewsItem
}

type AssemblerInterface interface {
	Run(items []feed.NewsItem, now time.Time) feed.Feed
	Category(items []feed.NewsItem, slug string) (feed.Section, bool)
}

type GeneratorInterface interface {
	Run(channel feed.Channel, items []feed.NewsItem) (string, error)
}

var (
	_ PipelineInterface  = (*feed.Pipeline)(nil)
	_ AssemblerInterface = (*feed.Assembler)(nil)
	_ GeneratorInterface = (*feed.Generator)(nil)
)

type Handler struct {
	pipeline  PipelineInterface
	assembler AssemblerInterface
	generator GeneratorInterface
	siteName  string
	baseURL   string
	version   string
	sourceOK  bool
	now       func() time.Time
}

type NewsResponse struct {
	Items []feed.NewsItem `json:"items"`
	Total int             `json:"total"`
}
