package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AllFields(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, t.TempDir(), `root: /srv/data
sniff_length: 512
mime_types:
  .zzlog: text/plain
catalog:
  db: /tmp/catalog.db
  chunk_size: 50
  chunk_overlap: 5
  ignore_directories:
    - node_modules
    - vendor
meilisearch:
  host: http://search:7700
  api_key: secret
  index: files
shell:
  command: cat > /dev/null
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/data", cfg.Root)
	assert.Equal(t, 512, cfg.SniffLength)
	assert.Equal(t, "text/plain", cfg.MimeTypes[".zzlog"])
	assert.Equal(t, "/tmp/catalog.db", cfg.Catalog.DBPath)
	assert.Equal(t, 50, cfg.Catalog.ChunkSize)
	assert.Equal(t, 5, cfg.Catalog.ChunkOverlap)
	assert.Equal(t, []string{"node_modules", "vendor"}, cfg.Catalog.IgnoreDirs)
	assert.Equal(t, "http://search:7700", cfg.Meilisearch.Host)
	assert.Equal(t, "secret", cfg.Meilisearch.APIKey)
	assert.Equal(t, "files", cfg.Meilisearch.Index)
	assert.Equal(t, "cat > /dev/null", cfg.Shell.Command)
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsWorkingDirectoryFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeConfig(t, dir, "sniff_length: 64\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.SniffLength)
	assert.Equal(t, 200, cfg.Catalog.ChunkSize, "unset fields keep defaults")
}

func TestLoad_FileNotFound(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, t.TempDir(), "{{invalid")

	cfg, err := Load(path)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	chdir(t, t.TempDir())
	path := writeConfig(t, t.TempDir(), "root: /from-file\ncatalog:\n  chunk_size: 10\n")

	t.Setenv("FILENODE_ROOT", "/from-env")
	t.Setenv("FILENODE_CATALOG_IGNORE_DIRECTORIES", "a,b")
	t.Setenv("FILENODE_MEILISEARCH_INDEX", "env-index")
	t.Setenv("FILENODE_MIME_TYPES", ".zzlog:text/plain")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from-env", cfg.Root)
	assert.Equal(t, 10, cfg.Catalog.ChunkSize)
	assert.Equal(t, []string{"a", "b"}, cfg.Catalog.IgnoreDirs)
	assert.Equal(t, "env-index", cfg.Meilisearch.Index)
	assert.Equal(t, "text/plain", cfg.MimeTypes[".zzlog"])
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FILENODE_CATALOG_DB=/from/dotenv.db\n"), 0o644))

	// Register cleanup for the variable godotenv is about to export.
	t.Setenv("FILENODE_CATALOG_DB", "")
	require.NoError(t, os.Unsetenv("FILENODE_CATALOG_DB"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv.db", cfg.Catalog.DBPath)
}

func TestValidate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		require.NoError(t, Default().Validate(nil))
	})

	t.Run("overlap is clamped", func(t *testing.T) {
		cfg := Default()
		cfg.Catalog.ChunkSize = 3
		cfg.Catalog.ChunkOverlap = 7
		require.NoError(t, cfg.Validate(nil))
		assert.Equal(t, 2, cfg.Catalog.ChunkOverlap)
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero sniff length", func(c *Config) { c.SniffLength = 0 }},
		{"zero chunk size", func(c *Config) { c.Catalog.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.Catalog.ChunkOverlap = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate(nil))
		})
	}
}

func TestOptionsConversion(t *testing.T) {
	cfg := Default()
	cfg.MimeTypes = map[string]string{"zzlog": "text/plain"}
	cfg.Shell.Command = "true"

	treeOpts := cfg.TreeOptions()
	assert.Equal(t, cfg.SniffLength, treeOpts.SniffLength)
	assert.Equal(t, "text/plain", treeOpts.MimeTypes["zzlog"])

	catOpts := cfg.CatalogOptions()
	assert.Equal(t, 200, catOpts.ChunkSize)
	assert.Equal(t, 20, catOpts.ChunkOverlap)
	assert.Equal(t, []string{".git"}, catOpts.IgnoreDirs)
	assert.Equal(t, "true", catOpts.Shell.Command)

	catOpts.IgnoreDirs[0] = "changed"
	assert.Equal(t, ".git", cfg.Catalog.IgnoreDirs[0])
}
