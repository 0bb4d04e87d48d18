package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/Align/internal/utils"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

type Config struct {
	Addr          string      `yaml:"addr"`
	Storage       string      `yaml:"storage"`
	SQLitePath    string      `yaml:"sqlite_path"`
	MigrationsDir string      `yaml:"migrations_dir"`
	FixturesPath  string      `yaml:"fixtures_path"`
	StaticDir     string      `yaml:"static_dir"`
	CORSOrigins   []string    `yaml:"cors_origins"`
	Log           LogConfig   `yaml:"log"`
	Build         BuildConfig `yaml:"-"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // json|text
}

type BuildConfig struct {
	Commit    string
	BuildTime string
}

// LoadConfig reads filename as YAML. A missing file falls back to the
// ALIGN_* environment variables. Env build metadata is always applied.
func LoadConfig(filename string) (*Config, error) {
	var cfg *Config
	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		cfg = &Config{}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) || filename == "":
		cfg = loadConfigFromEnv()
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg.Build = BuildConfig{Commit: os.Getenv("ALIGN_COMMIT"), BuildTime: os.Getenv("ALIGN_BUILD_TIME")}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFromEnv() *Config {
	cfg := &Config{
		Addr:          utils.SafeEnv("ALIGN_ADDR", ""),
		Storage:       utils.SafeEnv("ALIGN_STORAGE", ""),
		SQLitePath:    utils.SafeEnv("ALIGN_SQLITE_PATH", ""),
		MigrationsDir: utils.SafeEnv("ALIGN_MIGRATIONS_DIR", ""),
		FixturesPath:  utils.SafeEnv("ALIGN_FIXTURES", ""),
		StaticDir:     utils.SafeEnv("ALIGN_STATIC_DIR", ""),
		Log: LogConfig{
			Level:  utils.SafeEnv("ALIGN_LOG_LEVEL", ""),
			Format: utils.SafeEnv("ALIGN_LOG_FORMAT", ""),
		},
	}
	if v := utils.SafeEnv("ALIGN_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.Storage == "" {
		c.Storage = StorageMemory
	}
	if c.SQLitePath == "" {
		c.SQLitePath = "data/align.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return l, nil
}

// Logger builds the process logger described by c.Log.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
