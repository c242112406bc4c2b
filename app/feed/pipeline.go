package feed

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/notion-feed/app/metrics"
	"github.com/lysyi3m/notion-feed/app/notion"
	"github.com/lysyi3m/notion-feed/app/preview"
)

// Source returns raw records in display order.
type Source interface {
	Query(ctx context.Context) ([]notion.Page, error)
}

type ThumbnailResolver interface {
	Resolve(ctx context.Context, link string) preview.Resolution
}

var (
	_ Source            = (*notion.Client)(nil)
	_ ThumbnailResolver = (*preview.Resolver)(nil)
)

type Pipeline struct {
	source     Source
	normalizer *Normalizer
	resolver   ThumbnailResolver
}

func NewPipeline(source Source, normalizer *Normalizer, resolver ThumbnailResolver) *Pipeline {
	return &Pipeline{
		source:     source,
		normalizer: normalizer,
		resolver:   resolver,
	}
}

// Run produces the full news sequence in source order. Failures are logged
// and reduce the result to an empty slice; Run never returns nil.
func (p *Pipeline) Run(ctx context.Context) []NewsItem {
	start := time.Now()
	defer func() {
		metrics.PipelineDuration.Observe(time.Since(start).Seconds())
	}()

	pages, err := p.query(ctx)
	if err != nil {
		p.logSourceError(err)
		metrics.PipelineItems.Set(0)
		return []NewsItem{}
	}

	items := make([]NewsItem, len(pages))
	for i, page := range pages {
		items[i] = p.normalizer.Run(page)
	}

	p.resolveImages(ctx, items)

	metrics.PipelineItems.Set(float64(len(items)))
	slog.Debug("Pipeline completed", "items", len(items), "duration", time.Since(start))

	return items
}

func (p *Pipeline) query(ctx context.Context) ([]notion.Page, error) {
	start := time.Now()
	pages, err := p.source.Query(ctx)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.SourceQueryDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	return pages, err
}

// resolveImages resolves every thumbnail concurrently. Each goroutine writes
// only its own index, so the source order is kept.
func (p *Pipeline) resolveImages(ctx context.Context, items []NewsItem) {
	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			res := p.resolver.Resolve(ctx, items[idx].URL)
			items[idx].Image = cmp.Or(res.Image, preview.DefaultFallbackImage)
		}(i)
	}
	wg.Wait()
}

func (p *Pipeline) logSourceError(err error) {
	if errors.Is(err, notion.ErrNotConfigured) {
		slog.Error("Missing NOTION_TOKEN or NOTION_DATA_SOURCE_ID, returning empty feed")
		return
	}

	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		slog.Error("Notion API error", "code", apiErr.Code, "status", apiErr.Status, "message", apiErr.Message)
		return
	}

	slog.Error("Notion query failed", "error", err)
}
