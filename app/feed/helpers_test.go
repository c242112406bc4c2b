package feed

import (
	"github.com/lysyi3m/notion-feed/app/notion"
)

type record struct {
	id              string
	title           string
	url             string
	category        string
	publicationDate string
	expiryDate      string
	source          string
	note            string
}

func (r record) page() notion.Page {
	props := notion.Properties{}

	if r.title != "" {
		props[notion.PropertyName] = notion.Property{Type: "title", Title: []notion.RichText{{PlainText: r.title}}}
	}
	if r.url != "" {
		url := r.url
		props[notion.PropertyLink] = notion.Property{Type: "url", URL: &url}
	}
	if r.category != "" {
		props[notion.PropertyCategory] = notion.Property{Type: "select", Select: &notion.Option{Name: r.category}}
	}
	if r.publicationDate != "" {
		props[notion.PropertyPublicationDate] = notion.Property{Type: "date", Date: &notion.DateValue{Start: r.publicationDate}}
	}
	if r.expiryDate != "" {
		props[notion.PropertyExpiryDate] = notion.Property{Type: "date", Date: &notion.DateValue{Start: r.expiryDate}}
	}
	if r.source != "" {
		props[notion.PropertySource] = notion.Property{Type: "rich_text", RichText: []notion.RichText{{PlainText: r.source}}}
	}
	if r.note != "" {
		props[notion.PropertyEditorialNote] = notion.Property{Type: "rich_text", RichText: []notion.RichText{{PlainText: r.note}}}
	}

	return notion.Page{ID: r.id, Properties: props}
}

func strPtr(s string) *string {
	return &s
}

func dateOf(item NewsItem) string {
	if item.Date == nil {
		return "<nil>"
	}
	return *item.Date
}
