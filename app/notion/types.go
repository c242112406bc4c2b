package notion

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured is returned when the token or data source ID is missing.
var ErrNotConfigured = errors.New("notion source is not configured")

// APIError is the error object returned by the Notion API on non-2xx responses
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error %d %s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is an object_not_found API error.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == "object_not_found" || apiErr.Status == 404
	}
	return false
}

// Page is a single record of a data source query.
type Page struct {
	ID         string     `json:"id"`
	Properties Properties `json:"properties"`
}

// Properties maps property names to their typed values. Every lookup is optional.
type Properties map[string]Property

type Property struct {
	Type     string     `json:"type"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	URL      *string    `json:"url,omitempty"`
	Select   *Option    `json:"select,omitempty"`
	Status   *Option    `json:"status,omitempty"`
	Date     *DateValue `json:"date,omitempty"`
}

type RichText struct {
	PlainText string `json:"plain_text"`
}

type Option struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type DateValue struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// Title returns the text of a title property.
func (p Properties) Title(name string) (string, bool) {
	prop, ok := p[name]
	if !ok {
		return "", false
	}
	return joinText(prop.Title)
}

// RichText returns the text of a rich_text property.
func (p Properties) RichText(name string) (string, bool) {
	prop, ok := p[name]
	if !ok {
		return "", false
	}
	return joinText(prop.RichText)
}

func (p Properties) URL(name string) (string, bool) {
	prop, ok := p[name]
	if !ok || prop.URL == nil {
		return "", false
	}
	url := strings.TrimSpace(*prop.URL)
	return url, url != ""
}

// Select returns the option name of a select property.
func (p Properties) Select(name string) (string, bool) {
	prop, ok := p[name]
	if !ok {
		return "", false
	}
	return optionName(prop.Select)
}

// Status returns the option name of a status property.
func (p Properties) Status(name string) (string, bool) {
	prop, ok := p[name]
	if !ok {
		return "", false
	}
	return optionName(prop.Status)
}

// Date returns the start of a date property.
func (p Properties) Date(name string) (string, bool) {
	prop, ok := p[name]
	if !ok || prop.Date == nil {
		return "", false
	}
	start := strings.TrimSpace(prop.Date.Start)
	return start, start != ""
}

func joinText(segments []RichText) (string, bool) {
	var b strings.Builder
	for _, segment := range segments {
		b.WriteString(segment.PlainText)
	}
	text := strings.TrimSpace(b.String())
	return text, text != ""
}

func optionName(option *Option) (string, bool) {
	if option == nil {
		return "", false
	}
	name := strings.TrimSpace(option.Name)
	return name, name != ""
}

// Request and response payloads

type queryRequest struct {
	Filter      queryFilter `json:"filter"`
	Sorts       []querySort `json:"sorts"`
	PageSize    int         `json:"page_size,omitempty"`
	StartCursor string      `json:"start_cursor,omitempty"`
}

type queryFilter struct {
	Property string       `json:"property"`
	Status   statusFilter `json:"status"`
}

type statusFilter struct {
	Equals string `json:"equals"`
}

type querySort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

type databaseResponse struct {
	ID          string `json:"id"`
	DataSources []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data_sources"`
}
