package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Notion source configuration
	NotionToken        string `long:"notion-token" env:"NOTION_TOKEN" description:"Notion integration token"`
	NotionDataSourceID string `long:"notion-data-source-id" env:"NOTION_DATA_SOURCE_ID" description:"Notion database or data source ID"`
	NotionAPIURL       string `long:"notion-api-url" env:"NOTION_API_URL" default:"https://api.notion.com" description:"Notion API base URL"`
	NotionVersion      string `long:"notion-version" env:"NOTION_VERSION" default:"2025-09-03" description:"Notion API version header"`
	SourceTimeout      int    `long:"source-timeout" env:"SOURCE_TIMEOUT" default:"15" description:"Notion query timeout in seconds"`

	// Thumbnail configuration
	FallbackImage    string `long:"fallback-image" env:"FALLBACK_IMAGE" default:"/fallback.jpg" description:"Image path used when no thumbnail can be resolved"`
	PreviewTimeout   int    `long:"preview-timeout" env:"PREVIEW_TIMEOUT" default:"3000" description:"Link preview timeout in milliseconds"`
	PreviewUserAgent string `long:"preview-user-agent" env:"PREVIEW_USER_AGENT" default:"googlebot" description:"User agent sent when scraping link previews"`

	// Application configuration
	SiteName   string `long:"site-name" env:"SITE_NAME" default:"Digital Cookie" description:"Source label for entries without one"`
	LayoutFile string `long:"layout-file" env:"LAYOUT_FILE" description:"YAML file with display categories and list limits (optional)"`
	Port       string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl    string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://news.example.com)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Notion Feed/1.0" description:"User agent string for Notion API requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for event expiry (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.SourceTimeout <= 0 {
		return nil, fmt.Errorf("source timeout must be positive, got %d", raw.SourceTimeout)
	}
	if raw.PreviewTimeout <= 0 {
		return nil, fmt.Errorf("preview timeout must be positive, got %d", raw.PreviewTimeout)
	}

	cfg := &Cfg{
		NotionToken:        raw.NotionToken,
		NotionDataSourceID: raw.NotionDataSourceID,
		NotionAPIURL:       raw.NotionAPIURL,
		NotionVersion:      raw.NotionVersion,
		SourceTimeout:      time.Duration(raw.SourceTimeout) * time.Second,
		FallbackImage:      raw.FallbackImage,
		PreviewTimeout:     time.Duration(raw.PreviewTimeout) * time.Millisecond,
		PreviewUserAgent:   raw.PreviewUserAgent,
		SiteName:           raw.SiteName,
		LayoutFile:         raw.LayoutFile,
		Port:               raw.Port,
		BaseUrl:            raw.BaseUrl,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	return cfg, nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
