package feed

import (
	"cmp"

	"github.com/lysyi3m/notion-feed/app/notion"
)

type Normalizer struct {
	siteName string
}

func NewNormalizer(siteName string) *Normalizer {
	return &Normalizer{siteName: siteName}
}

// Run maps a Notion page to a NewsItem without an image. Missing properties
// fall back to their defaults; it never fails.
func (n *Normalizer) Run(page notion.Page) NewsItem {
	props := page.Properties

	title, _ := props.Title(notion.PropertyName)
	link, _ := props.URL(notion.PropertyLink)
	category, _ := props.Select(notion.PropertyCategory)
	source, _ := props.RichText(notion.PropertySource)

	item := NewsItem{
		ID:       page.ID,
		Title:    cmp.Or(title, DefaultTitle),
		URL:      link,
		Category: cmp.Or(category, DefaultCategory),
		Source:   cmp.Or(source, n.siteName),
	}

	dateProperty := notion.PropertyPublicationDate
	if item.IsEvent() {
		dateProperty = notion.PropertyExpiryDate
	}
	if date, ok := props.Date(dateProperty); ok {
		item.Date = &date
	}

	if note, ok := props.RichText(notion.PropertyEditorialNote); ok {
		item.EditorialNote = &note
	}

	return item
}
