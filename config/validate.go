package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tsawler/wikimelt/content"
	"github.com/tsawler/wikimelt/export"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

// Validate checks that the configuration is usable. All problems are
// reported together.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Source.Page == "" && cfg.Source.URL == "" && cfg.Source.Input == "" {
		errs = append(errs, errors.New("one of source.page, source.url or source.input is required"))
	}
	if cfg.Fetch.Endpoint == "" {
		errs = append(errs, errors.New("fetch.endpoint is empty"))
	}
	if cfg.Fetch.Timeout < 0 {
		errs = append(errs, fmt.Errorf("fetch.timeout must not be negative, got %s", cfg.Fetch.Timeout))
	}
	if cfg.Fetch.MaxBodySize < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_body_size must not be negative, got %d", cfg.Fetch.MaxBodySize))
	}

	if len(cfg.Extract.Targets) == 0 && cfg.Extract.TargetsFile == "" {
		errs = append(errs, errors.New("extract.targets is empty and no targets file is set"))
	}
	if cfg.Extract.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("extract.concurrency must be at least 1, got %d", cfg.Extract.Concurrency))
	}
	for _, lvl := range cfg.Extract.HeadingLevels {
		if lvl < 1 || lvl > 6 {
			errs = append(errs, fmt.Errorf("extract.heading_levels: %d is not a heading level", lvl))
		}
	}
	if err := cfg.ClassifierConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("extract.classifier: %w", err))
	}

	if _, ok := content.ParseExclusionMode(strings.ToLower(cfg.Content.Exclusion)); !ok {
		errs = append(errs, fmt.Errorf("content.exclusion: unknown mode %q", cfg.Content.Exclusion))
	}

	if _, err := export.ParseFormat(cfg.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if _, err := export.ParseColumns(cfg.Output.Columns); err != nil {
		errs = append(errs, fmt.Errorf("output.columns: %w", err))
	}

	if !logLevels[strings.ToLower(cfg.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", cfg.Log.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
