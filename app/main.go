package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/notion-feed/app/api"
	"github.com/lysyi3m/notion-feed/app/cfg"
	"github.com/lysyi3m/notion-feed/app/feed"
	"github.com/lysyi3m/notion-feed/app/notion"
	"github.com/lysyi3m/notion-feed/app/preview"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	if appConfig.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	slog.Info("Starting Notion Feed server", "version", appConfig.Version, "site", appConfig.SiteName)

	layout, err := cfg.LoadLayout(appConfig.LayoutFile)
	if err != nil {
		slog.Error("Failed to load layout", "file", appConfig.LayoutFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Layout loaded", "categories", layout.Categories, "default_limit", layout.DefaultLimit, "expanded_limit", layout.ExpandedLimit)

	if !appConfig.HasSource() {
		slog.Warn("Notion source not configured, feed will be empty", "token_set", appConfig.NotionToken != "", "data_source_set", appConfig.NotionDataSourceID != "")
	}

	httpClient := &http.Client{}

	notionClient := notion.NewClient(httpClient, notion.Options{
		BaseURL:      appConfig.NotionAPIURL,
		Token:        appConfig.NotionToken,
		DataSourceID: appConfig.NotionDataSourceID,
		Version:      appConfig.NotionVersion,
		UserAgent:    appConfig.UserAgent,
		Timeout:      appConfig.SourceTimeout,
	})

	scraper := preview.NewScraper(httpClient, appConfig.PreviewUserAgent)
	resolver := preview.NewResolver(scraper, appConfig.FallbackImage, appConfig.PreviewTimeout)

	pipeline := feed.NewPipeline(notionClient, feed.NewNormalizer(appConfig.SiteName), resolver)
	assembler := feed.NewAssembler(layout)

	apiHandler := api.NewHandler(appConfig, pipeline, assembler)
	server := api.NewServer(apiHandler)

	// Write timeout covers the source query plus the slowest preview
	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appConfig.SourceTimeout + appConfig.PreviewTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Notion Feed server shutdown complete")
}
