package feed

import (
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
	"golang.org/x/text/cases"

	"github.com/lysyi3m/notion-feed/app/cfg"
)

// Assembler groups a news sequence into display sections and upcoming events
type Assembler struct {
	layout *cfg.Layout
}

func NewAssembler(layout *cfg.Layout) *Assembler {
	if layout == nil {
		layout = cfg.DefaultLayout()
	}
	return &Assembler{layout: layout}
}

func (a *Assembler) Run(items []NewsItem, now time.Time) Feed {
	groups := lo.GroupBy(items, func(item NewsItem) string {
		return item.Category
	})

	sections := make([]Section, 0, len(a.layout.Categories))
	for _, category := range a.layout.Categories {
		group, ok := groups[category]
		if !ok {
			continue
		}
		sections = append(sections, a.section(category, group))
	}

	return Feed{
		Sections:    sections,
		Events:      UpcomingEvents(items, now),
		GeneratedAt: now,
	}
}

// Category returns the archive of the category whose slug matches
func (a *Assembler) Category(items []NewsItem, slug string) (Section, bool) {
	slug = Slug(slug)

	category, ok := lo.Find(lo.Uniq(lo.Map(items, func(item NewsItem, _ int) string {
		return item.Category
	})), func(name string) bool {
		return Slug(name) == slug
	})
	if !ok || slug == "" {
		return Section{}, false
	}

	return a.section(category, lo.Filter(items, func(item NewsItem, _ int) bool {
		return item.Category == category
	})), true
}

func (a *Assembler) section(category string, items []NewsItem) Section {
	sorted := SortByDateDesc(items)

	return Section{
		Name:     category,
		Slug:     Slug(category),
		Items:    capItems(sorted, a.layout.DefaultLimit),
		Expanded: capItems(sorted, a.layout.ExpandedLimit),
		HasMore:  len(sorted) > a.layout.DefaultLimit,
		Total:    len(sorted),
	}
}

// UpcomingEvents returns the event items whose date has not ended yet,
// soonest first. A date counts until the end of that day in local time.
func UpcomingEvents(items []NewsItem, now time.Time) []NewsItem {
	events := lo.Filter(items, func(item NewsItem, _ int) bool {
		if !item.IsEvent() {
			return false
		}
		date, ok := item.ParsedDate()
		if !ok {
			return false
		}
		return !endOfDay(date).Before(now)
	})

	slices.SortStableFunc(events, func(x, y NewsItem) int {
		dx, _ := x.ParsedDate()
		dy, _ := y.ParsedDate()
		return dx.Compare(dy)
	})

	return events
}

// SortByDateDesc returns a copy sorted newest first. Items without a
// parseable date go last and keep their relative order.
func SortByDateDesc(items []NewsItem) []NewsItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(x, y NewsItem) int {
		dx, okx := x.ParsedDate()
		dy, oky := y.ParsedDate()
		switch {
		case okx && oky:
			return dy.Compare(dx)
		case okx:
			return -1
		case oky:
			return 1
		default:
			return 0
		}
	})
	return sorted
}

// Slug turns a category name into a URL path segment, e.g. "Tips & Tutorials" -> "tips-tutorials".
func Slug(name string) string {
	folded := cases.Fold().String(name)
	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(words, "-")
}

func endOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), time.Local)
}

func capItems(items []NewsItem, limit int) []NewsItem {
	if limit < 0 {
		limit = 0
	}
	return slices.Clone(items[:min(limit, len(items))])
}
