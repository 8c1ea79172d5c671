package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to upper-cased keys, so db_path can be set with
// KITCHENCHECK_DB_PATH.
const EnvPrefix = "KITCHENCHECK"

type Config struct {
	DBPath        string `json:"db_path" mapstructure:"db_path"`
	WebPort       int    `json:"web_port" mapstructure:"web_port"`
	SessionSecret string `json:"session_secret" mapstructure:"session_secret"`
	SessionTTL    string `json:"session_ttl" mapstructure:"session_ttl"`
	OverdueCheck  string `json:"overdue_check" mapstructure:"overdue_check"`
	Timezone      string `json:"timezone" mapstructure:"timezone"`
}

func Default() Config {
	return Config{
		WebPort:      8080,
		SessionTTL:   "12h",
		OverdueCheck: "@every 5m",
		Timezone:     "Local",
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "kitchencheck", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// LoadEnv reads KEY=value files into the process environment. Missing files
// are skipped and variables already set win.
func LoadEnv(files ...string) error {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads the JSON config at path, if present, then applies environment
// overrides on top.
func Load(path string) (Config, error) {
	defaults := Default()

	v := viper.New()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("web_port", defaults.WebPort)
	v.SetDefault("session_secret", defaults.SessionSecret)
	v.SetDefault("session_ttl", defaults.SessionTTL)
	v.SetDefault("overdue_check", defaults.OverdueCheck)
	v.SetDefault("timezone", defaults.Timezone)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

func (c Config) Validate() error {
	if c.WebPort < 0 || c.WebPort > 65535 {
		return fmt.Errorf("web_port %d out of range", c.WebPort)
	}
	if _, err := c.TTL(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.OverdueCheck != "" {
		if _, err := cron.ParseStandard(c.OverdueCheck); err != nil {
			return fmt.Errorf("overdue_check %q: %w", c.OverdueCheck, err)
		}
	}
	return nil
}

func (c Config) TTL() (time.Duration, error) {
	if c.SessionTTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("session_ttl %q: %w", c.SessionTTL, err)
	}
	if ttl < 0 {
		return 0, fmt.Errorf("session_ttl %q must not be negative", c.SessionTTL)
	}
	return ttl, nil
}

// Location is the zone "today" is computed in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
