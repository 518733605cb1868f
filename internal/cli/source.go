package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tsawler/wikimelt"
	"github.com/tsawler/wikimelt/config"
	"github.com/tsawler/wikimelt/fetch"
)

// sourceBindings maps the source and extraction flags to config keys.
var sourceBindings = map[string]string{
	"source.page":                   "page",
	"source.url":                    "url",
	"source.input":                  "input",
	"fetch.endpoint":                "endpoint",
	"fetch.timeout":                 "timeout",
	"extract.targets":               "targets",
	"extract.targets_file":          "targets-file",
	"extract.table_class":           "table-class",
	"extract.heading_levels":        "heading-levels",
	"extract.concurrency":           "concurrency",
	"extract.canonical":             "canonical",
	"extract.classifier.hit_weight": "hit-weight",
}

func addSourceFlags(cmd *cobra.Command) {
	d := config.Default()
	f := cmd.Flags()
	f.String("page", d.Source.Page, "page title to fetch through the Parse API")
	f.String("url", "", "page URL to fetch as raw HTML")
	f.StringP("input", "i", "", "local HTML or Parse API JSON file")
	f.String("endpoint", d.Fetch.Endpoint, "MediaWiki API endpoint")
	f.Duration("timeout", d.Fetch.Timeout, "request timeout")
	f.StringSlice("targets", d.Extract.Targets, "target identifiers")
	f.String("targets-file", "", "YAML file with targets and metadata markers")
	f.String("table-class", d.Extract.TableClass, "class marking data tables (empty for all tables)")
	f.IntSlice("heading-levels", nil, "heading levels used for context (default all)")
	f.Int("concurrency", d.Extract.Concurrency, "tables processed at once")
	f.Bool("canonical", false, "report identifiers in the target list's spelling")
	f.Int("hit-weight", d.Extract.Classifier.HitWeight, "classifier weight of one target hit")
}

// source describes where the page came from.
type source struct {
	name      string
	extractor *wikimelt.Extractor
	client    *fetch.Client
}

func (s *source) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// openSource resolves the configured source (input, then URL, then page)
// and applies the extraction settings to its Extractor.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*source, error) {
	set, markers, err := cfg.TargetSet()
	if err != nil {
		return nil, err
	}

	s := &source{}
	switch {
	case cfg.Source.Input != "":
		s.name = cfg.Source.Input
		s.extractor = wikimelt.Open(cfg.Source.Input)
	case cfg.Source.URL != "":
		if s.client, err = fetch.New(cfg.FetchOptions()); err != nil {
			return nil, err
		}
		s.name = fetch.NormalizeURL(cfg.Source.URL)
		logger.Info("fetching page", "url", s.name)
		s.extractor = wikimelt.FromURL(ctx, s.client, cfg.Source.URL)
	default:
		if s.client, err = fetch.New(cfg.FetchOptions()); err != nil {
			return nil, err
		}
		s.name = cfg.Source.Page
		logger.Info("fetching page", "title", s.name, "endpoint", cfg.Fetch.Endpoint)
		s.extractor = wikimelt.FromPage(ctx, s.client, cfg.Source.Page)
	}

	e := s.extractor.
		TargetSet(set).
		TableClass(cfg.Extract.TableClass).
		MetadataMarkers(markers...).
		Sentinels(cfg.Extract.Sentinels...).
		Classifier(cfg.ClassifierConfig()).
		Concurrency(cfg.Extract.Concurrency).
		Logger(logger)
	if len(cfg.Extract.HeadingLevels) > 0 {
		e = e.HeadingLevels(cfg.Extract.HeadingLevels...)
	}
	if cfg.Extract.Canonical {
		e = e.CanonicalIdentifiers()
	}
	s.extractor = e

	return s, nil
}
