package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"rtl-reshaper/internal/transform"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the optional config file looked up in the working directory.
const DefaultFile = "rtl-reshaper.yaml"

type Config struct {
	InputDir        string `yaml:"input_dir"`
	OutputDir       string `yaml:"output_dir"`
	Extension       string `yaml:"extension"`
	QuoteMode       string `yaml:"quote_mode"`
	WorkerCount     int    `yaml:"worker_count"`
	DeleteHarakat   bool   `yaml:"delete_harakat"`
	Ligatures       bool   `yaml:"ligatures"`
	LogLevel        string `yaml:"log_level"`
	WatchDebounceMS int    `yaml:"watch_debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		InputDir:        "input",
		OutputDir:       "output",
		Extension:       ".yml",
		QuoteMode:       string(transform.Strict),
		WorkerCount:     1,
		DeleteHarakat:   true,
		Ligatures:       true,
		LogLevel:        "info",
		WatchDebounceMS: 300,
	}
}

// Load builds the configuration from defaults, the YAML file at path, then
// .env and the process environment. An empty path means DefaultFile, which
// may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	cfg.applyEnv()

	cfg.Extension = normalizeExt(cfg.Extension)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

func (c *Config) applyEnv() {
	c.InputDir = getEnv("INPUT_DIR", c.InputDir)
	c.OutputDir = getEnv("OUTPUT_DIR", c.OutputDir)
	c.Extension = getEnv("FILE_EXTENSION", c.Extension)
	c.QuoteMode = getEnv("QUOTE_MODE", c.QuoteMode)
	c.WorkerCount = getEnvInt("WORKER_COUNT", c.WorkerCount)
	c.DeleteHarakat = getEnvBool("DELETE_HARAKAT", c.DeleteHarakat)
	c.Ligatures = getEnvBool("LIGATURES", c.Ligatures)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.WatchDebounceMS = getEnvInt("WATCH_DEBOUNCE_MS", c.WatchDebounceMS)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.InputDir) == "" {
		return errors.New("input directory is empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("output directory is empty")
	}
	if c.Extension == "" || c.Extension == "." {
		return errors.New("file extension is empty")
	}
	if _, err := transform.ParseQuoteMode(c.QuoteMode); err != nil {
		return err
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("worker count must be positive, got %d", c.WorkerCount)
	}
	if c.WatchDebounceMS < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %d", c.WatchDebounceMS)
	}
	return nil
}

// WatchDebounce returns the watch debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

func normalizeExt(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-integer environment value")
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-boolean environment value")
		return fallback
	}
	return b
}
