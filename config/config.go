package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xeptore/beatpulse/autosave"
	"github.com/xeptore/beatpulse/catalog"
	"github.com/xeptore/beatpulse/export"
	"github.com/xeptore/beatpulse/lint"
	"github.com/xeptore/beatpulse/polish"
	"github.com/xeptore/beatpulse/ratelimit"
)

type Config struct {
	SessionFile  string          `yaml:"session_file"`
	LibraryFile  string          `yaml:"library_file"`
	TemplateFile string          `yaml:"template_file"`
	ExportDir    string          `yaml:"export_dir"`
	ExportPrefix string          `yaml:"export_prefix"`
	LogLevel     string          `yaml:"log_level"`
	TagPacks     []string        `yaml:"tag_packs"`
	Tracks       []catalog.Track `yaml:"tracks"`
	Autosave     Autosave        `yaml:"autosave"`
	Lint         lint.Rules      `yaml:"lint"`
	Layout       export.Layout   `yaml:"export_layout"`
	Polish       Polish          `yaml:"polish"`
}

type Autosave struct {
	Debounce      time.Duration `yaml:"debounce"`
	MaxRetries    uint64        `yaml:"max_retries"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

type Polish struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIVersion  string        `yaml:"api_version"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	Cooldown    time.Duration `yaml:"cooldown"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// Default is the configuration used when no file is given. Keys missing
// from a config file keep these values.
func Default() Config {
	save := autosave.DefaultOptions()
	return Config{
		SessionFile:  "beatpulse-session.json",
		LibraryFile:  "beatpulse-library.json",
		TemplateFile: "template.xlsx",
		ExportDir:    ".",
		ExportPrefix: "TuneTag",
		LogLevel:     "info",
		Tracks:       catalog.Default().Tracks(),
		Autosave: Autosave{
			Debounce:      save.Debounce,
			MaxRetries:    save.MaxRetries,
			RetryInterval: save.RetryInterval,
		},
		Lint:   lint.DefaultRules(),
		Layout: export.DefaultLayout(),
		Polish: Polish{
			Endpoint:    "https://api.anthropic.com/v1/messages",
			Model:       "claude-sonnet-4-20250514",
			APIVersion:  "2023-06-01",
			MaxTokens:   400,
			Timeout:     PolishRequestTimeout,
			MaxAttempts: 3,
			Cooldown:    ratelimit.PolishCooldown,
			CacheTTL:    DefaultPolishCacheTTL,
		},
	}
}

func (cfg *Config) validate() error {
	if strings.TrimSpace(cfg.SessionFile) == "" {
		return errors.New("session file is empty")
	}
	if strings.TrimSpace(cfg.LibraryFile) == "" {
		return errors.New("library file is empty")
	}
	if strings.TrimSpace(cfg.ExportPrefix) == "" {
		return errors.New("export prefix is empty")
	}
	if _, err := cfg.Catalog(); nil != err {
		return fmt.Errorf("invalid tracks: %v", err)
	}
	if err := cfg.Lint.Validate(); nil != err {
		return fmt.Errorf("invalid lint rules: %v", err)
	}
	if err := cfg.Layout.Validate(); nil != err {
		return fmt.Errorf("invalid export layout: %v", err)
	}
	if cfg.Autosave.Debounce < 0 || cfg.Autosave.RetryInterval < 0 {
		return errors.New("autosave durations must not be negative")
	}

	p := cfg.Polish
	if p.Endpoint == "" || p.Model == "" || p.APIVersion == "" {
		return errors.New("polish endpoint, model and api_version are required")
	}
	if p.MaxTokens <= 0 {
		return errors.New("polish max_tokens must be positive")
	}
	if p.MaxAttempts < 1 || p.MaxAttempts > 10 {
		return errors.New("polish max_attempts must be between 1 and 10")
	}
	if p.Timeout <= 0 {
		return errors.New("polish timeout must be positive")
	}
	return nil
}

func (cfg *Config) Catalog() (*catalog.Catalog, error) {
	return catalog.New(cfg.Tracks)
}

func (cfg *Config) AutosaveOptions() autosave.Options {
	return autosave.Options{
		Debounce:      cfg.Autosave.Debounce,
		MaxRetries:    cfg.Autosave.MaxRetries,
		RetryInterval: cfg.Autosave.RetryInterval,
	}
}

func (cfg *Config) PolishConfig(apiKey string) polish.Config {
	return polish.Config{
		Endpoint:    cfg.Polish.Endpoint,
		APIKey:      apiKey,
		Model:       cfg.Polish.Model,
		APIVersion:  cfg.Polish.APIVersion,
		MaxTokens:   cfg.Polish.MaxTokens,
		Timeout:     cfg.Polish.Timeout,
		MaxAttempts: cfg.Polish.MaxAttempts,
		Cooldown:    cfg.Polish.Cooldown,
		CacheTTL:    cfg.Polish.CacheTTL,
	}
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}

func FromString(data string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}
