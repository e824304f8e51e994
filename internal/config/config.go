// Package config holds the run configuration of the gain update and diff commands.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bruceraup/glims-aster-gains/pkg/gainservice"
	"github.com/bruceraup/glims-aster-gains/pkg/glims"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables overriding the configuration,
// e.g. ASTERGAIN_LOOKUP_EQ_CROSSING_TIME.
const EnvPrefix = "ASTERGAIN"

// Gain sources.
const (
	SourceService = "service"
	SourceModel   = "model"
)

// Line endings of the output file.
const (
	LineEndingCRLF = "crlf"
	LineEndingLF   = "lf"
)

// dateToken is replaced by the run date in the output file name.
const dateToken = "{date}"

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration.
type Config struct {
	Files   Files   `yaml:"files"`
	Columns Columns `yaml:"columns"`
	Lookup  Lookup  `yaml:"lookup"`
	Output  Output  `yaml:"output"`
	Logging Logging `yaml:"logging"`
}

// Files names the input and output datasets.
type Files struct {
	Input      string `yaml:"input" validate:"required"`
	Output     string `yaml:"output" validate:"required"` // {date} is replaced by the run date
	DiffBefore string `yaml:"diff_before" split_words:"true"`
	DiffAfter  string `yaml:"diff_after" split_words:"true"`
}

// Columns holds the 0-based field positions of a STAR record.
type Columns struct {
	WindowStart    int    `yaml:"window_start" split_words:"true" validate:"gte=0"`
	WindowEnd      int    `yaml:"window_end" split_words:"true" validate:"gte=0"`
	Gains          int    `yaml:"gains" validate:"gte=0"`
	Points         int    `yaml:"points" validate:"gte=0"`
	SentinelMarker string `yaml:"sentinel_marker" split_words:"true" validate:"required"`
}

// Lookup configures where continuous gains come from.
type Lookup struct {
	Source         string        `yaml:"source" validate:"oneof=service model"`
	URL            string        `yaml:"url" validate:"required,url"`
	EqCrossingTime float64       `yaml:"eq_crossing_time" split_words:"true" validate:"gte=0,lt=24"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"`
	RateLimit      float64       `yaml:"rate_limit" split_words:"true" validate:"gte=0"` // requests per second, 0 is unlimited
	Burst          int           `yaml:"burst" validate:"gte=0"`
	UserAgent      string        `yaml:"user_agent" split_words:"true"`
}

// Output configures how the updated dataset is written.
type Output struct {
	LineEnding    string `yaml:"line_ending" split_words:"true" validate:"oneof=crlf lf"`
	Compress      bool   `yaml:"compress"`
	MetricsFile   string `yaml:"metrics_file" split_words:"true"`
	ProgressEvery int    `yaml:"progress_every" split_words:"true" validate:"gte=0"`
}

// Logging configures the application logger.
type Logging struct {
	Debug bool `yaml:"debug"`
}

// Default returns the configuration of the 2023 STAR update.
func Default() *Config {
	schema := glims.DefaultSchema()
	return &Config{
		Files: Files{
			Input:      "GLIMS_STARs_01Jan23-31Dec23(STARTool)_Final.csv",
			Output:     "GLIMS_STARs_Raup_Kargel_" + dateToken + ".csv",
			DiffBefore: "GLIMS_STARs_Raup_20231130.csv",
			DiffAfter:  "GLIMS_STARs_Raup_Kargel_2025-03-17.csv",
		},
		Columns: Columns{
			WindowStart:    schema.WindowStart,
			WindowEnd:      schema.WindowEnd,
			Gains:          schema.Gains,
			Points:         schema.Points,
			SentinelMarker: schema.SentinelMarker,
		},
		Lookup: Lookup{
			Source:         SourceService,
			URL:            gainservice.DefaultURL,
			EqCrossingTime: 21.667,
		},
		Output: Output{
			LineEnding:    LineEndingCRLF,
			ProgressEvery: 100,
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load returns the default configuration, overlaid with the YAML file at path (if path is
// not empty) and then with environment variable overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// use a single instance of Validate, it caches struct info
var validate = validator.New()

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := c.Schema().Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// Schema returns the record layout.
func (c *Config) Schema() glims.Schema {
	return glims.Schema{
		WindowStart:    c.Columns.WindowStart,
		WindowEnd:      c.Columns.WindowEnd,
		Gains:          c.Columns.Gains,
		Points:         c.Columns.Points,
		SentinelMarker: c.Columns.SentinelMarker,
	}
}

// OutputName returns the output file name for a run on date now.
func (f Files) OutputName(now time.Time) string {
	return strings.ReplaceAll(f.Output, dateToken, now.Format("2006-01-02"))
}

// LineTerminator returns the record terminator of the output file.
func (o Output) LineTerminator() string {
	if o.LineEnding == LineEndingLF {
		return "\n"
	}
	return "\r\n"
}

// ClientOptions returns the gain service client options.
func (l Lookup) ClientOptions() gainservice.Options {
	return gainservice.Options{
		UserAgent: l.UserAgent,
		Timeout:   l.Timeout,
		RateLimit: l.RateLimit,
		Burst:     l.Burst,
	}
}
