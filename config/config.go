// Package config loads wikimelt settings from defaults, an optional YAML
// file, WIKIMELT_* environment variables and command-line flags.
package config

import (
	"time"

	"github.com/tsawler/wikimelt/classify"
	"github.com/tsawler/wikimelt/fetch"
	"github.com/tsawler/wikimelt/filter"
	"github.com/tsawler/wikimelt/htmldoc"
	"github.com/tsawler/wikimelt/targets"
)

// DefaultPage is the vocabulary comparison annex on Spanish Wikipedia.
const DefaultPage = "Anexo:Diferencias de vocabulario estándar entre países hispanohablantes"

// Config is the complete wikimelt configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Content ContentConfig `yaml:"content" mapstructure:"content"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig names where the page comes from. At most one of Page, URL
// and Input is used, in the order Input, URL, Page.
type SourceConfig struct {
	Page  string `yaml:"page" mapstructure:"page"`
	URL   string `yaml:"url" mapstructure:"url"`
	Input string `yaml:"input" mapstructure:"input"`
}

// FetchConfig mirrors fetch.Options.
type FetchConfig struct {
	Endpoint    string        `yaml:"endpoint" mapstructure:"endpoint"`
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodySize int64         `yaml:"max_body_size" mapstructure:"max_body_size"`
	CacheSize   int           `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTL    time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// ExtractConfig drives the extraction pipeline.
type ExtractConfig struct {
	Targets         []string         `yaml:"targets" mapstructure:"targets"`
	TargetsFile     string           `yaml:"targets_file" mapstructure:"targets_file"`
	MetadataMarkers []string         `yaml:"metadata_markers" mapstructure:"metadata_markers"`
	Sentinels       []string         `yaml:"sentinels" mapstructure:"sentinels"`
	TableClass      string           `yaml:"table_class" mapstructure:"table_class"`
	HeadingLevels   []int            `yaml:"heading_levels" mapstructure:"heading_levels"`
	Concurrency     int              `yaml:"concurrency" mapstructure:"concurrency"`
	Canonical       bool             `yaml:"canonical" mapstructure:"canonical"`
	Classifier      ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
}

// ClassifierConfig mirrors classify.Config.
type ClassifierConfig struct {
	HitWeight int `yaml:"hit_weight" mapstructure:"hit_weight"`
	MinLength int `yaml:"min_length" mapstructure:"min_length"`
	MaxLength int `yaml:"max_length" mapstructure:"max_length"`
}

// ContentConfig configures the content command.
type ContentConfig struct {
	Exclusion string `yaml:"exclusion" mapstructure:"exclusion"`
}

// OutputConfig configures the dataset writer.
type OutputConfig struct {
	Path    string `yaml:"path" mapstructure:"path"`
	Format  string `yaml:"format" mapstructure:"format"`
	Columns string `yaml:"columns" mapstructure:"columns"`
}

// StoreConfig configures the run store. An empty SQLite path disables it.
type StoreConfig struct {
	SQLite string `yaml:"sqlite" mapstructure:"sqlite"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	fo := fetch.DefaultOptions()
	cc := classify.DefaultConfig()
	return &Config{
		Source: SourceConfig{
			Page: DefaultPage,
		},
		Fetch: FetchConfig{
			Endpoint:    fo.Endpoint,
			UserAgent:   fo.UserAgent,
			Timeout:     fo.Timeout,
			MaxBodySize: fo.MaxBodySize,
			CacheSize:   fo.CacheSize,
			CacheTTL:    fo.CacheTTL,
		},
		Extract: ExtractConfig{
			Targets:         append([]string(nil), targets.DefaultNames...),
			MetadataMarkers: append([]string(nil), filter.DefaultMetadataMarkers...),
			Sentinels:       append([]string(nil), filter.DefaultSentinels...),
			TableClass:      htmldoc.DefaultTableClass,
			Concurrency:     1,
			Classifier: ClassifierConfig{
				HitWeight: cc.HitWeight,
				MinLength: cc.MinLength,
				MaxLength: cc.MaxLength,
			},
		},
		Content: ContentConfig{
			Exclusion: "standard",
		},
		Output: OutputConfig{
			Path:    "data/processed/regional_vocab.csv",
			Format:  "csv",
			Columns: "vocabulary",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// FetchOptions converts the fetch section to fetch.Options.
func (c *Config) FetchOptions() fetch.Options {
	return fetch.Options{
		Endpoint:    c.Fetch.Endpoint,
		UserAgent:   c.Fetch.UserAgent,
		Timeout:     c.Fetch.Timeout,
		MaxBodySize: c.Fetch.MaxBodySize,
		CacheSize:   c.Fetch.CacheSize,
		CacheTTL:    c.Fetch.CacheTTL,
	}
}

// ClassifierConfig converts the classifier section to classify.Config.
func (c *Config) ClassifierConfig() classify.Config {
	return classify.Config{
		HitWeight: c.Extract.Classifier.HitWeight,
		MinLength: c.Extract.Classifier.MinLength,
		MaxLength: c.Extract.Classifier.MaxLength,
	}
}

// TargetSet builds the target identifier set. A targets file replaces the
// inline list, and its metadata markers, when present, replace the
// configured ones.
func (c *Config) TargetSet() (*targets.Set, []string, error) {
	markers := c.Extract.MetadataMarkers
	if c.Extract.TargetsFile == "" {
		set, err := targets.New(c.Extract.Targets...)
		return set, markers, err
	}

	f, err := targets.Load(c.Extract.TargetsFile)
	if err != nil {
		return nil, nil, err
	}
	set, err := f.Set()
	if err != nil {
		return nil, nil, err
	}
	if len(f.MetadataMarkers) > 0 {
		markers = f.MetadataMarkers
	}
	return set, markers, nil
}
