package preview

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	maxPageBytes = 5 << 20
	maxImgTags   = 10
)

// Meta tags checked for a preview image, in priority order
var imageMetaSelectors = []string{
	`meta[property="og:image"]`,
	`meta[property="og:image:url"]`,
	`meta[property="og:image:secure_url"]`,
	`meta[name="twitter:image"]`,
	`meta[name="twitter:image:src"]`,
	`meta[property="twitter:image"]`,
}

// Scraper fetches a page and collects candidate preview images from its metadata
type Scraper struct {
	httpClient *http.Client
	userAgent  string
}

func NewScraper(httpClient *http.Client, userAgent string) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func (s *Scraper) Run(ctx context.Context, pageURL string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	data, err := s.fetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	return s.extractImages(data, base)
}

func (s *Scraper) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

func (s *Scraper) extractImages(data []byte, base *url.URL) ([]string, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("HTML data is empty")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var images []string
	seen := make(map[string]bool)
	add := func(raw string) {
		if abs, ok := absoluteImageURL(base, raw); ok && !seen[abs] {
			seen[abs] = true
			images = append(images, abs)
		}
	}

	for _, selector := range imageMetaSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			add(sel.AttrOr("content", ""))
		})
	}

	if len(images) == 0 {
		doc.Find(`link[rel="image_src"]`).Each(func(_ int, sel *goquery.Selection) {
			add(sel.AttrOr("href", ""))
		})
	}

	if len(images) == 0 {
		if article, err := readability.FromReader(bytes.NewReader(data), base); err == nil {
			add(article.Image)
		} else {
			slog.Debug("Readability found no lead image", "url", base.String(), "error", err)
		}
	}

	if len(images) == 0 {
		doc.Find("img[src]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
			add(sel.AttrOr("src", ""))
			return i+1 < maxImgTags
		})
	}

	return images, nil
}

func absoluteImageURL(base *url.URL, raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	abs := base.ResolveReference(ref)
	if !isHTTPURL(abs) {
		return "", false
	}

	return abs.String(), true
}

func isHTTPURL(u *url.URL) bool {
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
