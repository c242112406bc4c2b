package preview

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/notion-feed/app/metrics"
)

const (
	DefaultFallbackImage = "/fallback.jpg"
	DefaultTimeout       = 3 * time.Second
)

type Kind string

const (
	KindPlatform Kind = "platform"
	KindScraped  Kind = "scraped"
	KindFallback Kind = "fallback"
)

// ImageScraper returns candidate preview images for a page, best first
type ImageScraper interface {
	Run(ctx context.Context, pageURL string) ([]string, error)
}

var _ ImageScraper = (*Scraper)(nil)

type Resolution struct {
	Image string
	Kind  Kind
}

// Resolver picks a thumbnail for a link. It never fails: every path ends in
// a platform thumbnail, a scraped image or the fallback image.
type Resolver struct {
	scraper  ImageScraper
	fallback string
	timeout  time.Duration
}

func NewResolver(scraper ImageScraper, fallbackImage string, timeout time.Duration) *Resolver {
	if fallbackImage == "" {
		fallbackImage = DefaultFallbackImage
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Resolver{
		scraper:  scraper,
		fallback: fallbackImage,
		timeout:  timeout,
	}
}

func (r *Resolver) Resolve(ctx context.Context, link string) Resolution {
	res := r.resolve(ctx, link)
	metrics.ThumbnailResolutions.WithLabelValues(string(res.Kind)).Inc()
	return res
}

func (r *Resolver) resolve(ctx context.Context, link string) Resolution {
	link = strings.TrimSpace(link)
	if !IsHTTPLink(link) {
		return r.fallbackResolution()
	}

	if thumb, ok := YouTubeThumbnail(link); ok {
		return Resolution{Image: thumb, Kind: KindPlatform}
	}

	images, err := r.scrape(ctx, link)
	if err != nil {
		slog.Info("Link preview failed, using fallback image", "url", link, "error", err)
		return r.fallbackResolution()
	}
	for _, image := range images {
		if image = strings.TrimSpace(image); image != "" {
			return Resolution{Image: image, Kind: KindScraped}
		}
	}

	slog.Debug("Link preview has no images, using fallback image", "url", link)
	return r.fallbackResolution()
}

// scrape bounds the scraper by the resolver timeout even if the scraper
// itself ignores ctx.
func (r *Resolver) scrape(ctx context.Context, link string) ([]string, error) {
	if r.scraper == nil {
		return nil, fmt.Errorf("no scraper configured")
	}

	scrapeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		images []string
		err    error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: fmt.Errorf("scraper panic: %v", p)}
			}
		}()
		images, err := r.scraper.Run(scrapeCtx, link)
		done <- result{images: images, err: err}
	}()

	select {
	case res := <-done:
		return res.images, res.err
	case <-scrapeCtx.Done():
		return nil, fmt.Errorf("link preview timed out: %w", scrapeCtx.Err())
	}
}

func (r *Resolver) fallbackResolution() Resolution {
	return Resolution{Image: r.fallback, Kind: KindFallback}
}

// IsHTTPLink reports whether link is an absolute http or https URL
func IsHTTPLink(link string) bool {
	if link == "" {
		return false
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return isHTTPURL(u)
}
