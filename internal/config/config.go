package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration. Values come from an optional YAML
// file, then from the environment (.env included), in that order.
type Config struct {
	Port        string         `yaml:"port"`
	Env         string         `yaml:"env"`
	CORSOrigins []string       `yaml:"cors_origins"`
	Gemini      GeminiConfig   `yaml:"gemini"`
	Database    DatabaseConfig `yaml:"database"`
	Log         LogConfig      `yaml:"log"`
	Analyze     AnalyzeConfig  `yaml:"analyze"`
	Notify      NotifyConfig   `yaml:"notify"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AnalyzeConfig paces calls to the analysis model.
type AnalyzeConfig struct {
	RPM   int `yaml:"rpm"`
	Burst int `yaml:"burst"`
}

type NotifyConfig struct {
	Duration time.Duration `yaml:"duration"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		CORSOrigins: []string{"*"},
		Gemini:      GeminiConfig{Model: "gemini-1.5-flash"},
		Log:         LogConfig{Level: "info"},
		Analyze:     AnalyzeConfig{RPM: 30, Burst: 1},
		Notify:      NotifyConfig{Duration: 5 * time.Second},
	}
}

// Load reads .env (if present), the YAML file at path (if path is set)
// and the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Database.URL = NormalizeDatabaseURL(cfg.Database.URL)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("PORT", &c.Port)
	str("APP_ENV", &c.Env)
	str("GEMINI_API_KEY", &c.Gemini.APIKey)
	str("GEMINI_MODEL", &c.Gemini.Model)
	str("DATABASE_URL", &c.Database.URL)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FILE", &c.Log.File)

	if v, ok := lookup("CORS_ORIGINS"); ok && v != "" {
		c.CORSOrigins = splitList(v)
	}

	for key, dst := range map[string]*int{"ANALYZE_RPM": &c.Analyze.RPM, "ANALYZE_BURST": &c.Analyze.Burst} {
		v, ok := lookup(key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
	}

	if v, ok := lookup("NOTIFY_DURATION"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NOTIFY_DURATION %q: %w", v, err)
		}
		c.Notify.Duration = d
	}
	return nil
}

// IsProduction reports whether APP_ENV selects production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func (c *Config) GeminiConfigured() bool   { return c.Gemini.APIKey != "" }
func (c *Config) DatabaseConfigured() bool { return c.Database.URL != "" }

// NormalizeDatabaseURL rewrites the postgres:// scheme to postgresql://
// and requires TLS unless an sslmode is already given.
func NormalizeDatabaseURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "postgres://") {
		raw = "postgresql://" + strings.TrimPrefix(raw, "postgres://")
	}
	if strings.Contains(raw, "sslmode=") {
		return raw
	}
	if strings.Contains(raw, "?") {
		return raw + "&sslmode=require"
	}
	return raw + "?sslmode=require"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
