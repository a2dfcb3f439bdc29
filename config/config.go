// Package config loads runtime settings by layering defaults, an optional
// YAML file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ModeHTTP   = "http"
	ModeSQLite = "sqlite"
)

type Config struct {
	// BindAddr is the TCP address of the dashboard API.
	BindAddr string `yaml:"bind_addr"`
	LogLevel string `yaml:"log_level"`

	Screenpipe Screenpipe `yaml:"screenpipe"`
	Gemini     Gemini     `yaml:"gemini"`

	// StateDBPath is the service's own sqlite file holding goals.
	// Empty keeps goals in memory only.
	StateDBPath string `yaml:"state_db_path"`

	// VideoOtherMin and DomainOtherMin are the smallest Other buckets sent for re-categorization.
	VideoOtherMin  int `yaml:"video_other_min"`
	DomainOtherMin int `yaml:"domain_other_min"`
}

type Screenpipe struct {
	// Mode selects how frames are read: through the recorder's raw_sql endpoint or straight from its sqlite file.
	Mode     string `yaml:"mode"`
	APIURL   string `yaml:"api_url"`
	DBPath   string `yaml:"db_path"`
	DBDriver string `yaml:"db_driver"`
	// ProcessName is looked up among running processes for /health.
	ProcessName string `yaml:"process_name"`
}

type Gemini struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

const (
	defaultBindAddr       = "127.0.0.1:3000"
	defaultLogLevel       = "info"
	defaultAPIURL         = "http://localhost:3030"
	defaultDBDriver       = "sqlite"
	defaultProcessName    = "screenpipe"
	defaultGeminiModel    = "gemini-1.5-flash"
	defaultGeminiTimeout  = 30 * time.Second
	defaultVideoOtherMin  = 3
	defaultDomainOtherMin = 5
)

func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		BindAddr: defaultBindAddr,
		LogLevel: defaultLogLevel,
		Screenpipe: Screenpipe{
			Mode:        ModeHTTP,
			APIURL:      defaultAPIURL,
			DBPath:      filepath.Join(home, ".screenpipe", "db.sqlite"),
			DBDriver:    defaultDBDriver,
			ProcessName: defaultProcessName,
		},
		Gemini: Gemini{
			Model:   defaultGeminiModel,
			Timeout: defaultGeminiTimeout,
		},
		StateDBPath:    filepath.Join(home, ".screenusage", "state.db"),
		VideoOtherMin:  defaultVideoOtherMin,
		DomainOtherMin: defaultDomainOtherMin,
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := lookupEnvTrimmed("SCREENPIPE_API_URL"); ok && v != "" {
		cfg.Screenpipe.APIURL = v
	}
	if v, ok := lookupEnvTrimmed("SCREENPIPE_DB_PATH"); ok && v != "" {
		cfg.Screenpipe.DBPath = v
		cfg.Screenpipe.Mode = ModeSQLite
	}
	if v, ok := lookupEnvTrimmed("GEMINI_API_KEY"); ok {
		cfg.Gemini.APIKey = v
	}
	if v, ok := lookupEnvTrimmed("GEMINI_MODEL"); ok && v != "" {
		cfg.Gemini.Model = v
	}
	if v, ok := lookupEnvTrimmed("SCREENUSAGE_BIND_ADDR"); ok && v != "" {
		cfg.BindAddr = v
	}
	if v, ok := lookupEnvTrimmed("SCREENUSAGE_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
}

func (c Config) Validate() error {
	switch c.Screenpipe.Mode {
	case ModeHTTP:
		if c.Screenpipe.APIURL == "" {
			return errors.New("config: screenpipe.api_url is required in http mode")
		}
	case ModeSQLite:
		if c.Screenpipe.DBPath == "" {
			return errors.New("config: screenpipe.db_path is required in sqlite mode")
		}
	default:
		return fmt.Errorf("config: unknown screenpipe.mode %q", c.Screenpipe.Mode)
	}
	switch c.Screenpipe.DBDriver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("config: unknown screenpipe.db_driver %q", c.Screenpipe.DBDriver)
	}
	if c.VideoOtherMin <= 0 || c.DomainOtherMin <= 0 {
		return errors.New("config: re-categorization thresholds must be positive")
	}
	if c.Gemini.Timeout <= 0 {
		return errors.New("config: gemini.timeout must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to its slog level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return lvl, nil
}

func lookupEnvTrimmed(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}
