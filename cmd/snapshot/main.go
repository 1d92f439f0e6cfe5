// Package main 刷新本地页面快照：抓取配置的源页面并落盘
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ali-assistant-api/internal/config"
	"ali-assistant-api/internal/infrastructure/webfetch"
	"ali-assistant-api/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)

	rules := cfg.WebSearch.Snapshots
	refreshable := 0
	for _, r := range rules {
		if r.SourceURL != "" {
			refreshable++
		}
	}
	if refreshable == 0 {
		log.Info("no snapshot rules with source_url configured, nothing to refresh")
		return
	}

	fetcher := webfetch.NewFetcher(cfg.WebSearch.FetchTimeout)

	failed := 0
	for _, rule := range rules {
		if rule.SourceURL == "" {
			continue
		}

		text, err := fetcher.FetchText(ctx, rule.SourceURL)
		if err != nil {
			log.Error("failed to fetch snapshot source", "url", rule.SourceURL, "error", err)
			failed++
			continue
		}

		if err := os.MkdirAll(filepath.Dir(rule.File), 0o755); err != nil {
			log.Error("failed to create snapshot directory", "file", rule.File, "error", err)
			failed++
			continue
		}

		if err := os.WriteFile(rule.File, []byte(text), 0o644); err != nil {
			log.Error("failed to write snapshot file", "file", rule.File, "error", err)
			failed++
			continue
		}

		log.Info("snapshot refreshed", "url", rule.SourceURL, "file", rule.File, "bytes", len(text))
	}

	if failed > 0 {
		log.Error("snapshot refresh finished with failures", "failed", failed)
		os.Exit(1)
	}
}
