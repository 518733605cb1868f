package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. WIKIMELT_LOG_LEVEL.
const EnvPrefix = "WIKIMELT"

// keys lists every configuration key. Each one gets a default, an
// environment binding and, when registered, a flag binding.
var keys = []string{
	"source.page",
	"source.url",
	"source.input",
	"fetch.endpoint",
	"fetch.user_agent",
	"fetch.timeout",
	"fetch.max_body_size",
	"fetch.cache_size",
	"fetch.cache_ttl",
	"extract.targets",
	"extract.targets_file",
	"extract.metadata_markers",
	"extract.sentinels",
	"extract.table_class",
	"extract.heading_levels",
	"extract.concurrency",
	"extract.canonical",
	"extract.classifier.hit_weight",
	"extract.classifier.min_length",
	"extract.classifier.max_length",
	"content.exclusion",
	"output.path",
	"output.format",
	"output.columns",
	"store.sqlite",
	"log.level",
}

// Loader loads configuration with the following priority (highest first):
//  1. Bound command-line flags that were set
//  2. Environment variables (WIKIMELT_*)
//  3. Config file (explicit path, or wikimelt.yaml in the working
//     directory or $HOME/.wikimelt)
//  4. Default values
type Loader struct {
	file        string
	searchPaths []string
	flags       map[string]*pflag.Flag
}

// NewLoader creates a loader. An empty file searches the default locations.
func NewLoader(file string) *Loader {
	l := &Loader{
		file:  file,
		flags: make(map[string]*pflag.Flag),
	}
	l.searchPaths = []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		l.searchPaths = append(l.searchPaths, filepath.Join(home, ".wikimelt"))
	}
	return l
}

// SearchPaths replaces the directories searched for wikimelt.yaml.
func (l *Loader) SearchPaths(dirs ...string) *Loader {
	l.searchPaths = dirs
	return l
}

// BindFlag makes flag override key when the user sets it.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) *Loader {
	if flag != nil {
		l.flags[key] = flag
	}
	return l
}

// Load reads, merges and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()

	if l.file != "" {
		v.SetConfigFile(l.file)
	} else {
		v.SetConfigName("wikimelt")
		v.SetConfigType("yaml")
		for _, dir := range l.searchPaths {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	setDefaults(v)

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", flag.Name, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when none was named.
		var notFound viper.ConfigFileNotFoundError
		if l.file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("source.page", d.Source.Page)
	v.SetDefault("source.url", d.Source.URL)
	v.SetDefault("source.input", d.Source.Input)

	v.SetDefault("fetch.endpoint", d.Fetch.Endpoint)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.timeout", d.Fetch.Timeout)
	v.SetDefault("fetch.max_body_size", d.Fetch.MaxBodySize)
	v.SetDefault("fetch.cache_size", d.Fetch.CacheSize)
	v.SetDefault("fetch.cache_ttl", d.Fetch.CacheTTL)

	v.SetDefault("extract.targets", d.Extract.Targets)
	v.SetDefault("extract.targets_file", d.Extract.TargetsFile)
	v.SetDefault("extract.metadata_markers", d.Extract.MetadataMarkers)
	v.SetDefault("extract.sentinels", d.Extract.Sentinels)
	v.SetDefault("extract.table_class", d.Extract.TableClass)
	v.SetDefault("extract.heading_levels", d.Extract.HeadingLevels)
	v.SetDefault("extract.concurrency", d.Extract.Concurrency)
	v.SetDefault("extract.canonical", d.Extract.Canonical)
	v.SetDefault("extract.classifier.hit_weight", d.Extract.Classifier.HitWeight)
	v.SetDefault("extract.classifier.min_length", d.Extract.Classifier.MinLength)
	v.SetDefault("extract.classifier.max_length", d.Extract.Classifier.MaxLength)

	v.SetDefault("content.exclusion", d.Content.Exclusion)

	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.columns", d.Output.Columns)

	v.SetDefault("store.sqlite", d.Store.SQLite)

	v.SetDefault("log.level", d.Log.Level)
}

// Load is a convenience wrapper around NewLoader(file).Load().
func Load(file string) (*Config, error) {
	return NewLoader(file).Load()
}
