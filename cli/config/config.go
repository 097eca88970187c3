package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath  = "RTCVIEW_CONFIG"
	configDirName  = "rtcview"
	configFileName = "config.yaml"
)

type Config struct {
	LogLevel      string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFile       string        `yaml:"log_file"`
	SessionTTL    time.Duration `yaml:"session_ttl" validate:"gt=0"`
	ExportDir     string        `yaml:"export_dir"`
	DefaultSample string        `yaml:"default_sample" validate:"omitempty,oneof=legacy new"`
	WatchDebounce time.Duration `yaml:"watch_debounce" validate:"gte=0"`
}

func Default() Config {
	return Config{
		LogLevel:      "info",
		SessionTTL:    30 * time.Minute,
		ExportDir:     ".",
		DefaultSample: "legacy",
		WatchDebounce: 200 * time.Millisecond,
	}
}

var validate = validator.New()

// Level returns the configured log level, falling back to info.
func (c Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Load reads path over the defaults. Keys missing from the file keep their
// default values.
func Load(ctx context.Context, path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return cfg, nil
}

// DefaultPath is the per-user config location, e.g.
// ~/.config/rtcview/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(dir, configDirName, configFileName)
}

// LoadFromEnv loads the file named by RTCVIEW_CONFIG, or the default path.
// A missing default file is not an error; a missing explicit file is.
func LoadFromEnv(ctx context.Context) (Config, error) {
	path := os.Getenv(envConfigPath)
	if path != "" {
		return Load(ctx, path)
	}
	cfg, err := Load(ctx, DefaultPath())
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}
