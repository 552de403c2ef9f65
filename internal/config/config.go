// Package config loads photosite.yaml, applies environment overrides, and
// translates the result into the options of the individual tools.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"photosite/internal/printsheet"
	"photosite/internal/site"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "photosite.yaml"

// DotEnvFile is loaded into the environment before overrides are applied.
// Variables already set in the environment are kept.
var DotEnvFile = ".env"

// Config is the root configuration.
type Config struct {
	BaseURL string        `yaml:"base_url"`
	Scan    ScanConfig    `yaml:"scan"`
	Rename  RenameConfig  `yaml:"rename"`
	Site    SiteConfig    `yaml:"site"`
	Labels  LabelsConfig  `yaml:"labels"`
	Serve   ServeConfig   `yaml:"serve"`
	Logging LoggingConfig `yaml:"logging"`
}

// ScanConfig configures the scan command.
type ScanConfig struct {
	Dir          string `yaml:"dir"`
	Recursive    bool   `yaml:"recursive"`
	Out          string `yaml:"out"` // empty: <dir>/entries.xlsx
	DescFromName bool   `yaml:"desc_from_name"`
}

// RenameConfig configures the rename command.
type RenameConfig struct {
	Dir       string `yaml:"dir"`
	Recursive bool   `yaml:"recursive"`
	Quality   int    `yaml:"quality"`
}

// SiteConfig configures the build command.
type SiteConfig struct {
	Sheet        string     `yaml:"sheet"`
	Images       string     `yaml:"images"`
	Out          string     `yaml:"out"`
	MaxWidth     int        `yaml:"max_width"`
	ThumbWidth   int        `yaml:"thumb_width"`
	ImageQuality int        `yaml:"image_quality"`
	ThumbQuality int        `yaml:"thumb_quality"`
	Workers      int        `yaml:"workers"` // 0: one per CPU
	Texts        site.Texts `yaml:"texts"`
}

// LabelsConfig describes the sticker sheet in millimetres.
type LabelsConfig struct {
	Cols         int     `yaml:"cols"`
	Rows         int     `yaml:"rows"`
	CellMM       float64 `yaml:"cell_mm"`
	MarginLeftMM float64 `yaml:"margin_left_mm"`
	MarginTopMM  float64 `yaml:"margin_top_mm"`
	HGapMM       float64 `yaml:"h_gap_mm"`
	VGapMM       float64 `yaml:"v_gap_mm"`
	EntryLabels  bool    `yaml:"entry_labels"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
	Dir  string `yaml:"dir"` // empty: site.out
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	labels := printsheet.DefaultLabelOptions()
	sc := site.DefaultConfig()
	return &Config{
		Scan: ScanConfig{Dir: "images"},
		Rename: RenameConfig{
			Dir:     "images",
			Quality: 95,
		},
		Site: SiteConfig{
			Sheet:        "entries.xlsx",
			Images:       "images",
			Out:          "docs",
			MaxWidth:     sc.MaxWidth,
			ThumbWidth:   sc.ThumbWidth,
			ImageQuality: sc.ImageQuality,
			ThumbQuality: sc.ThumbQuality,
			Texts:        sc.Texts,
		},
		Labels: LabelsConfig{
			Cols:         labels.Cols,
			Rows:         labels.Rows,
			CellMM:       labels.CellMM,
			MarginLeftMM: labels.MarginLeftMM,
			MarginTopMM:  labels.MarginTopMM,
			HGapMM:       labels.HGapMM,
			VGapMM:       labels.VGapMM,
			EntryLabels:  labels.Labels,
		},
		Serve:   ServeConfig{Addr: ":8000"},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// The .env file and PHOTOSITE_* variables are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func loadDotEnv() error {
	if DotEnvFile == "" {
		return nil
	}
	if _, err := os.Stat(DotEnvFile); err != nil {
		return nil
	}
	if err := godotenv.Load(DotEnvFile); err != nil {
		return fmt.Errorf("failed to load %s: %w", DotEnvFile, err)
	}
	return nil
}

// applyEnvOverrides applies PHOTOSITE_* environment variables.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PHOTOSITE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PHOTOSITE_IMAGES"); v != "" {
		c.Site.Images = v
		c.Scan.Dir = v
		c.Rename.Dir = v
	}
	if v := os.Getenv("PHOTOSITE_OUT"); v != "" {
		c.Site.Out = v
	}
	if v := os.Getenv("PHOTOSITE_SHEET"); v != "" {
		c.Site.Sheet = v
	}
	if v := os.Getenv("PHOTOSITE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PHOTOSITE_WORKERS: %w", err)
		}
		c.Site.Workers = n
	}
	if v := os.Getenv("PHOTOSITE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"console", "json"}
)

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("base_url %q must be an absolute http(s) URL", c.BaseURL))
		}
	}
	if q := c.Rename.Quality; q < 1 || q > 100 {
		errs = append(errs, fmt.Errorf("rename.quality must be 1..100, got %d", q))
	}
	if q := c.Site.ImageQuality; q < 1 || q > 100 {
		errs = append(errs, fmt.Errorf("site.image_quality must be 1..100, got %d", q))
	}
	if q := c.Site.ThumbQuality; q < 1 || q > 100 {
		errs = append(errs, fmt.Errorf("site.thumb_quality must be 1..100, got %d", q))
	}
	if c.Site.MaxWidth <= 0 || c.Site.ThumbWidth <= 0 {
		errs = append(errs, errors.New("site.max_width and site.thumb_width must be positive"))
	}
	if c.Site.Workers < 0 {
		errs = append(errs, fmt.Errorf("site.workers must not be negative, got %d", c.Site.Workers))
	}
	if c.Labels.Cols <= 0 || c.Labels.Rows <= 0 || c.Labels.CellMM <= 0 {
		errs = append(errs, errors.New("labels.cols, labels.rows and labels.cell_mm must be positive"))
	}
	if !slices.Contains(validLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("invalid logging.level: %s (valid: %v)", c.Logging.Level, validLevels))
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Logging.Format)) {
		errs = append(errs, fmt.Errorf("invalid logging.format: %s (valid: %v)", c.Logging.Format, validFormats))
	}
	return errors.Join(errs...)
}

// SiteConfig returns the build configuration.
func (c *Config) SiteConfig() site.Config {
	return site.Config{
		Texts:        c.Site.Texts,
		MaxWidth:     c.Site.MaxWidth,
		ThumbWidth:   c.Site.ThumbWidth,
		ImageQuality: c.Site.ImageQuality,
		ThumbQuality: c.Site.ThumbQuality,
		Workers:      c.Site.Workers,
	}
}

// LabelOptions returns the sticker sheet layout.
func (c *Config) LabelOptions() printsheet.LabelOptions {
	return printsheet.LabelOptions{
		Cols:         c.Labels.Cols,
		Rows:         c.Labels.Rows,
		CellMM:       c.Labels.CellMM,
		MarginLeftMM: c.Labels.MarginLeftMM,
		MarginTopMM:  c.Labels.MarginTopMM,
		HGapMM:       c.Labels.HGapMM,
		VGapMM:       c.Labels.VGapMM,
		Labels:       c.Labels.EntryLabels,
	}
}

// ServeDir is the directory the preview server serves.
func (c *Config) ServeDir() string {
	if c.Serve.Dir != "" {
		return c.Serve.Dir
	}
	return c.Site.Out
}
