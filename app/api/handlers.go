package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/notion-feed/app/cfg"
	"github.com/lysyi3m/notion-feed/app/feed"
)

func NewHandler(config *cfg.Cfg, pipeline PipelineInterface, assembler AssemblerInterface) *Handler {
	return &Handler{
		pipeline:  pipeline,
		assembler: assembler,
		generator: feed.NewGenerator(),
		siteName:  config.SiteName,
		baseURL:   strings.TrimSuffix(config.BaseUrl, "/"),
		version:   config.Version,
		sourceOK:  config.HasSource(),
		now:       time.Now,
	}
}

func (h *Handler) GetNews(c *gin.Context) {
	items := h.pipeline.Run(c.Request.Context())

	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.JSON(http.StatusOK, NewsResponse{
		Items: items,
		Total: len(items),
	})
}

func (h *Handler) GetFeed(c *gin.Context) {
	items := h.pipeline.Run(c.Request.Context())

	c.JSON(http.StatusOK, h.assembler.Run(items, h.now()))
}

func (h *Handler) GetCategory(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing category slug parameter"})
		return
	}

	items := h.pipeline.Run(c.Request.Context())

	section, ok := h.assembler.Category(items, slug)
	if !ok {
		slog.Debug("Category not found", "slug", slug, "items", len(items))
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, section)
}

func (h *Handler) GetRSS(c *gin.Context) {
	items := h.pipeline.Run(c.Request.Context())

	channel := feed.Channel{
		Title:   h.siteName,
		Link:    h.baseURL,
		Version: h.version,
	}
	if h.baseURL != "" {
		channel.SelfLink = fmt.Sprintf("%s/feed.xml", h.baseURL)
	}

	rss, err := h.generator.Run(channel, items)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, map[string]interface{}{
		"timestamp":         h.now().In(time.Local).Format(time.RFC3339),
		"version":           h.version,
		"source_configured": h.sourceOK,
	})
}
