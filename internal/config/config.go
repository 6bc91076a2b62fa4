// Package config loads the site configuration file into an immutable Config value.
//
// A Config is constructed once at the start of a build and passed explicitly to
// every component that needs it; nothing in blogbuilder reads configuration
// from package-level state.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file looked up when no path is given.
const DefaultConfigFile = "config.yaml"

// Config represents the complete, resolved build configuration.
type Config struct {
	Site          Site
	Paths         Paths
	ThumbnailSize int
	Feed          FeedConfig
	Output        OutputConfig
	Build         BuildConfig
	Report        ReportConfig
	Metrics       MetricsConfig
}

// Site holds the options that shape URLs and page chrome.
type Site struct {
	Name        string
	URL         string // absolute base URL without trailing slash, empty for relative links
	PostsSubdir string // empty for root-level post URLs
}

// Paths holds absolute project directories.
type Paths struct {
	Root      string
	Data      string
	Images    string
	Templates string
	Static    string
	Output    string
}

// ThumbsDir is the persisted thumbnail cache under the output root.
func (p Paths) ThumbsDir() string {
	return filepath.Join(p.Output, ThumbsDirName)
}

// ThumbsDirName is the output subtree that survives output cleaning.
const ThumbsDirName = "thumbs"

// FeedConfig controls the RSS document.
type FeedConfig struct {
	Limit int `yaml:"limit"`
}

// OutputConfig controls output preparation.
type OutputConfig struct {
	Clean bool `yaml:"clean"` // delete everything but thumbs/ before building
}

// BuildConfig controls build execution.
type BuildConfig struct {
	Workers int `yaml:"workers"` // thumbnail worker count, 1 = sequential
}

// ReportConfig controls persisting the JSON build report.
type ReportConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// fileConfig mirrors the on-disk YAML schema. Pointers distinguish absent keys
// from explicit zero values.
type fileConfig struct {
	SiteName      string        `yaml:"site_name"`
	SiteURL       string        `yaml:"site_url"`
	PostsSubdir   *string       `yaml:"posts_subdir"`
	ThumbnailSize int           `yaml:"thumbnail_size"`
	Paths         filePaths     `yaml:"paths"`
	Feed          FeedConfig    `yaml:"feed"`
	Output        fileOutput    `yaml:"output"`
	Build         BuildConfig   `yaml:"build"`
	Report        ReportConfig  `yaml:"report"`
	Metrics       MetricsConfig `yaml:"metrics"`
}

type filePaths struct {
	Data      string `yaml:"data"`
	Images    string `yaml:"images"`
	Templates string `yaml:"templates"`
	Static    string `yaml:"static"`
	Output    string `yaml:"output"`
}

type fileOutput struct {
	Clean *bool `yaml:"clean"`
}

// Load reads the configuration file at configPath. The file's directory is the
// project root that every relative path resolves against.
func Load(configPath string) (*Config, error) {
	root, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "resolve project root").Fatal().
			WithContext("path", configPath).Build()
	}
	loadEnvFiles(root)

	// #nosec G304 -- the config path is chosen by the operator.
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
	}
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read config file").Fatal().
			WithContext("path", configPath).Build()
	}
	return Parse(data, root)
}

// Parse decodes raw YAML (after ${VAR} expansion) into a Config rooted at root.
func Parse(data []byte, root string) (*Config, error) {
	var raw fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &raw); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	applyEnvOverrides(&raw)

	cfg := fromFile(&raw, root)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to the default configuration,
// rooted at configPath's directory, when the file does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		root, err := filepath.Abs(filepath.Dir(configPath))
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryConfig, "resolve project root").Fatal().
				WithContext("path", configPath).Build()
		}
		loadEnvFiles(root)
		return Parse(nil, root)
	}
	return Load(configPath)
}
