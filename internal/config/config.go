// Package config loads filenode settings from a YAML file, a .env file and
// FILENODE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leafo/filenode/internal/catalog"
	"github.com/leafo/filenode/internal/filenode"
)

// ErrConfigNotFound is returned when an explicitly requested config file does
// not exist. Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const (
	// ConfigFileName is read from the working directory when no path is given.
	ConfigFileName = "filenode.yaml"
	// EnvPrefix is prepended to every environment variable name.
	EnvPrefix = "FILENODE_"
)

// CatalogConfig controls the SQLite catalog built by the index command.
type CatalogConfig struct {
	DBPath       string   `yaml:"db" env:"DB"`
	ChunkSize    int      `yaml:"chunk_size" env:"CHUNK_SIZE"`
	ChunkOverlap int      `yaml:"chunk_overlap" env:"CHUNK_OVERLAP"`
	IgnoreDirs   []string `yaml:"ignore_directories" env:"IGNORE_DIRECTORIES"`
}

type Config struct {
	Root        string                    `yaml:"root" env:"ROOT"`
	SniffLength int                       `yaml:"sniff_length" env:"SNIFF_LENGTH"`
	MimeTypes   map[string]string         `yaml:"mime_types" env:"MIME_TYPES"`
	Catalog     CatalogConfig             `yaml:"catalog" envPrefix:"CATALOG_"`
	Meilisearch catalog.MeilisearchConfig `yaml:"meilisearch" envPrefix:"MEILISEARCH_"`
	Shell       catalog.ShellTargetConfig `yaml:"shell" envPrefix:"SHELL_"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Root:        ".",
		SniffLength: filenode.DefaultSniffLength,
		Catalog: CatalogConfig{
			DBPath:       "filenode.db",
			ChunkSize:    200,
			ChunkOverlap: 20,
			IgnoreDirs:   []string{".git"},
		},
	}
}

// Load builds a Config from defaults, the YAML file at path, a .env file in
// the working directory and FILENODE_* variables, later sources winning. An
// empty path reads ConfigFileName if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = ConfigFileName
	}
	if err := cfg.mergeFile(path); err != nil {
		if explicit || !errors.Is(err, ErrConfigNotFound) {
			return nil, err
		}
	}

	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects unusable values. An overlap that would consume a whole
// chunk is clamped to ChunkSize-1 and logged.
func (c *Config) Validate(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if c.SniffLength <= 0 {
		return fmt.Errorf("sniff length must be positive, got %d", c.SniffLength)
	}
	if c.Catalog.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Catalog.ChunkSize)
	}
	if c.Catalog.ChunkOverlap < 0 {
		return fmt.Errorf("chunk overlap cannot be negative, got %d", c.Catalog.ChunkOverlap)
	}
	if c.Catalog.ChunkOverlap >= c.Catalog.ChunkSize {
		adjusted := c.Catalog.ChunkSize - 1
		logger.Warn("Chunk overlap exceeds chunk size; adjusting", "requested_overlap", c.Catalog.ChunkOverlap, "chunk_size", c.Catalog.ChunkSize, "adjusted_overlap", adjusted)
		c.Catalog.ChunkOverlap = adjusted
	}
	return nil
}

// TreeOptions converts the configuration into filenode options.
func (c *Config) TreeOptions() filenode.Options {
	mimeTypes := make(map[string]string, len(c.MimeTypes))
	for ext, typ := range c.MimeTypes {
		mimeTypes[ext] = typ
	}
	return filenode.Options{SniffLength: c.SniffLength, MimeTypes: mimeTypes}
}

// CatalogOptions converts the configuration into catalog options.
func (c *Config) CatalogOptions() catalog.Options {
	return catalog.Options{
		ChunkSize:    c.Catalog.ChunkSize,
		ChunkOverlap: c.Catalog.ChunkOverlap,
		IgnoreDirs:   append([]string(nil), c.Catalog.IgnoreDirs...),
		Meilisearch:  c.Meilisearch,
		Shell:        c.Shell,
	}
}
