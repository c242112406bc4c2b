package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Property names of the news database
const (
	PropertyName            = "Name"
	PropertyLink            = "Link"
	PropertyCategory        = "Category"
	PropertyStatus          = "Status"
	PropertyPublicationDate = "Publication Date"
	PropertyExpiryDate      = "Expiry Date"
	PropertySource          = "Source"
	PropertyEditorialNote   = "Editorial Note"

	StatusPublished = "Published"
)

const (
	DefaultBaseURL = "https://api.notion.com"
	DefaultVersion = "2025-09-03"

	pageSize         = 100
	maxResponseBytes = 10 << 20
)

type Options struct {
	BaseURL      string
	Token        string
	DataSourceID string
	Version      string
	UserAgent    string
	Timeout      time.Duration
}

type Client struct {
	httpClient *http.Client
	opts       Options
}

func NewClient(httpClient *http.Client, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	return &Client{
		httpClient: httpClient,
		opts:       opts,
	}
}

// Query returns all published pages of the configured data source, newest
// publication date first.
func (c *Client) Query(ctx context.Context) ([]Page, error) {
	if c.opts.Token == "" || c.opts.DataSourceID == "" {
		return nil, ErrNotConfigured
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	dataSourceID := c.resolveDataSource(ctx, c.opts.DataSourceID)

	var pages []Page
	cursor := ""
	for {
		resp, err := c.queryPage(ctx, dataSourceID, cursor)
		if err != nil {
			return nil, err
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		cursor = *resp.NextCursor
	}

	slog.Debug("Notion query completed", "data_source", dataSourceID, "pages", len(pages))

	return pages, nil
}

// resolveDataSource treats id as a database container first and returns its
// first child data source. Any probe failure falls back to id itself.
func (c *Client) resolveDataSource(ctx context.Context, id string) string {
	var db databaseResponse
	err := c.do(ctx, http.MethodGet, "/v1/databases/"+url.PathEscape(id), nil, &db)
	if err != nil {
		slog.Debug("Database probe failed, querying ID as data source", "id", id, "not_found", IsNotFound(err), "error", err)
		return id
	}

	if len(db.DataSources) > 0 && db.DataSources[0].ID != "" {
		slog.Debug("Database probe resolved data source", "database", id, "data_source", db.DataSources[0].ID)
		return db.DataSources[0].ID
	}

	return id
}

func (c *Client) queryPage(ctx context.Context, dataSourceID, cursor string) (*queryResponse, error) {
	body := queryRequest{
		Filter: queryFilter{
			Property: PropertyStatus,
			Status:   statusFilter{Equals: StatusPublished},
		},
		Sorts: []querySort{
			{Property: PropertyPublicationDate, Direction: "descending"},
		},
		PageSize:    pageSize,
		StartCursor: cursor,
	}

	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/data_sources/"+url.PathEscape(dataSourceID)+"/query", body, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.opts.Token)
	req.Header.Set("Notion-Version", c.opts.Version)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "http_error"
			apiErr.Message = strings.TrimSpace(resp.Status)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
