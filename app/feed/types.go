package feed

import (
	"strings"
	"time"
)

const (
	// CategoryUpcomingEvents switches an item's date to its expiry date.
	CategoryUpcomingEvents = "Upcoming Events"

	DefaultTitle    = "Untitled"
	DefaultCategory = "Uncategorized"
)

// NewsItem is the normalized, thumbnail-resolved entry served to consumers.
type NewsItem struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Category      string  `json:"category"`
	Date          *string `json:"date"`
	Source        string  `json:"source"`
	Image         string  `json:"image"`
	EditorialNote *string `json:"editorialNote"`
}

// IsEvent reports whether the item belongs to the upcoming events category.
func (i NewsItem) IsEvent() bool {
	return i.Category == CategoryUpcomingEvents
}

// ParsedDate parses Date as either a calendar date (local time) or an RFC 3339 timestamp.
func (i NewsItem) ParsedDate() (time.Time, bool) {
	if i.Date == nil {
		return time.Time{}, false
	}
	return parseDate(*i.Date)
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Feed is the assembled, display-ready view of a news sequence.
type Feed struct {
	Sections    []Section  `json:"sections"`
	Events      []NewsItem `json:"events"`
	GeneratedAt time.Time  `json:"generated_at"`
}

// Section is one display category.
type Section struct {
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	Items    []NewsItem `json:"items"`
	Expanded []NewsItem `json:"expanded"`
	HasMore  bool       `json:"has_more"`
	Total    int        `json:"total"`
}
