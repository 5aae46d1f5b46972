package config

import (
	"fmt"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileName is the workspace configuration file.
const FileName = "fundops.yaml"

// Draft store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config represents the top-level fundops.yaml configuration.
type Config struct {
	Organization OrganizationConfig `yaml:"organization"`
	Matching     MatchingConfig     `yaml:"matching"`
	Fees         FeesConfig         `yaml:"fees"`
	Drafts       DraftsConfig       `yaml:"drafts"`
	Server       ServerConfig       `yaml:"server"`
	History      HistoryConfig      `yaml:"history"`
	Log          LogConfig          `yaml:"log"`
}

// OrganizationConfig identifies the research office using the workspace.
type OrganizationConfig struct {
	Name       string `yaml:"name" envconfig:"FUNDOPS_ORG_NAME"`
	University string `yaml:"university" envconfig:"FUNDOPS_ORG_UNIVERSITY"`
}

// MatchingConfig holds the deposit-to-project scoring weights.
type MatchingConfig struct {
	FullName          float64 `yaml:"full_name" envconfig:"FUNDOPS_MATCHING_FULL_NAME"`
	NamePrefix        float64 `yaml:"name_prefix" envconfig:"FUNDOPS_MATCHING_NAME_PREFIX"`
	NamePrefixLength  int     `yaml:"name_prefix_length" envconfig:"FUNDOPS_MATCHING_NAME_PREFIX_LENGTH"`
	Manager           float64 `yaml:"manager" envconfig:"FUNDOPS_MATCHING_MANAGER"`
	Partner           float64 `yaml:"partner" envconfig:"FUNDOPS_MATCHING_PARTNER"`
	RecencyMax        float64 `yaml:"recency_max" envconfig:"FUNDOPS_MATCHING_RECENCY_MAX"`
	RecencyWindowDays int     `yaml:"recency_window_days" envconfig:"FUNDOPS_MATCHING_RECENCY_WINDOW_DAYS"`
	Threshold         float64 `yaml:"threshold" envconfig:"FUNDOPS_MATCHING_THRESHOLD"`
}

// FeesConfig controls management-fee allocation on incoming funds.
type FeesConfig struct {
	ManagementRate float64 `yaml:"management_rate" envconfig:"FUNDOPS_FEES_MANAGEMENT_RATE"`
}

// DraftsConfig selects where wizard drafts are kept and how often they are written.
type DraftsConfig struct {
	Backend   string                   `yaml:"backend" envconfig:"FUNDOPS_DRAFTS_BACKEND"`
	Dir       string                   `yaml:"dir" envconfig:"FUNDOPS_DRAFTS_DIR"`
	RedisAddr string                   `yaml:"redis_addr,omitempty" envconfig:"FUNDOPS_DRAFTS_REDIS_ADDR"`
	TTL       time.Duration            `yaml:"ttl" envconfig:"FUNDOPS_DRAFTS_TTL"`
	Autosave  map[string]time.Duration `yaml:"autosave" ignored:"true"` // per wizard kind; 0 writes on every change
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" envconfig:"FUNDOPS_SERVER_ADDR"`
}

// HistoryConfig controls git versioning of the workspace data files.
type HistoryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"FUNDOPS_HISTORY_ENABLED"`
	AuthorName  string `yaml:"author_name" envconfig:"FUNDOPS_HISTORY_AUTHOR_NAME"`
	AuthorEmail string `yaml:"author_email" envconfig:"FUNDOPS_HISTORY_AUTHOR_EMAIL"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"FUNDOPS_LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"FUNDOPS_LOG_FORMAT"` // "text" or "json"
}

// Load reads a fundops.yaml file from disk and applies environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg fields from FUNDOPS_* environment variables.
func ApplyEnv(cfg *Config) error {
	if err := envconfig.Process("fundops", cfg); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks value ranges that would make scoring or storage misbehave.
func (c *Config) Validate() error {
	m := &c.Matching
	if err := validation.ValidateStruct(m,
		validation.Field(&m.FullName, validation.Min(0.0)),
		validation.Field(&m.NamePrefix, validation.Min(0.0)),
		validation.Field(&m.NamePrefixLength, validation.Required, validation.Min(1)),
		validation.Field(&m.Manager, validation.Min(0.0)),
		validation.Field(&m.Partner, validation.Min(0.0)),
		validation.Field(&m.RecencyMax, validation.Min(0.0)),
		validation.Field(&m.RecencyWindowDays, validation.Required, validation.Min(1)),
		validation.Field(&m.Threshold, validation.Min(0.0)),
	); err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	f := &c.Fees
	if err := validation.ValidateStruct(f,
		validation.Field(&f.ManagementRate, validation.Min(0.0), validation.Max(1.0)),
	); err != nil {
		return fmt.Errorf("fees: %w", err)
	}

	d := &c.Drafts
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Backend, validation.Required, validation.In(BackendFile, BackendRedis)),
		validation.Field(&d.Dir, validation.When(d.Backend == BackendFile, validation.Required)),
		validation.Field(&d.RedisAddr, validation.When(d.Backend == BackendRedis, validation.Required)),
	); err != nil {
		return fmt.Errorf("drafts: %w", err)
	}

	h := &c.History
	if err := validation.ValidateStruct(h,
		validation.Field(&h.AuthorName, validation.When(h.Enabled, validation.Required)),
		validation.Field(&h.AuthorEmail, validation.When(h.Enabled, validation.Required, is.EmailFormat)),
	); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	l := &c.Log
	if err := validation.ValidateStruct(l,
		validation.Field(&l.Format, validation.In("text", "json")),
	); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// AutosaveDelay returns the debounce delay for a wizard kind.
func (c *Config) AutosaveDelay(kind string) time.Duration {
	return c.Drafts.Autosave[kind]
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(orgName, university string) *Config {
	return &Config{
		Organization: OrganizationConfig{
			Name:       orgName,
			University: university,
		},
		Matching: MatchingConfig{
			FullName:          100,
			NamePrefix:        70,
			NamePrefixLength:  5,
			Manager:           80,
			Partner:           90,
			RecencyMax:        15,
			RecencyWindowDays: 30,
			Threshold:         30,
		},
		Fees: FeesConfig{
			ManagementRate: 0.05,
		},
		Drafts: DraftsConfig{
			Backend: BackendFile,
			Dir:     "drafts",
			TTL:     7 * 24 * time.Hour,
			Autosave: map[string]time.Duration{
				"income":  500 * time.Millisecond,
				"claim":   0,
				"reagent": 0,
			},
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:5080",
		},
		History: HistoryConfig{
			AuthorName:  "fundops",
			AuthorEmail: "fundops@localhost.localdomain",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
