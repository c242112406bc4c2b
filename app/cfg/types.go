package cfg

import "time"

type Cfg struct {
	// Notion source
	NotionToken        string
	NotionDataSourceID string
	NotionAPIURL       string
	NotionVersion      string
	SourceTimeout      time.Duration

	// Thumbnail previews
	FallbackImage    string
	PreviewTimeout   time.Duration
	PreviewUserAgent string

	// Application configuration
	SiteName   string
	LayoutFile string
	Port       string
	BaseUrl    string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// HasSource reports whether both Notion settings are present.
func (c *Cfg) HasSource() bool {
	return c.NotionToken != "" && c.NotionDataSourceID != ""
}
