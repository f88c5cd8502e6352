package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackstats/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackstats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "latin1", cfg.Input.Encoding)
	assert.Equal(t, ',', cfg.Input.DelimiterRune())
	assert.Equal(t, "data/trackstats.db", cfg.Storage.DatabasePath)
	assert.True(t, cfg.Storage.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  level: debug
server:
  port: 9090
  read_timeout: 5s
  rate_limit:
    enabled: false
input:
  delimiter: ";"
storage:
  database_path: runs.db
`)

	tests := []struct {
		name     string
		env      map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name: "file overrides defaults",
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.False(t, cfg.Server.RateLimit.Enabled)
				assert.Equal(t, ';', cfg.Input.DelimiterRune())
				assert.Equal(t, "runs.db", cfg.Storage.DatabasePath)
				// keys absent from the file keep their defaults
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "latin1", cfg.Input.Encoding)
			},
		},
		{
			name: "environment overrides file",
			env: map[string]string{
				"TRACKSTATS_SERVER_PORT":              "7070",
				"TRACKSTATS_LOGGING_LEVEL":            "WARN",
				"TRACKSTATS_INPUT_ENCODING":           "UTF-8",
				"TRACKSTATS_SERVER_RATE_LIMIT_ENABLED": "true",
				"TRACKSTATS_TRACING_ENABLED":           "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "utf8", cfg.Input.Encoding)
				assert.True(t, cfg.Server.RateLimit.Enabled)
				assert.True(t, cfg.Tracing.Enabled)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := Load(path)
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_FindsFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "trackstats.yaml"),
		[]byte("export:\n  dir: out\n"), 0644))
	chdir(t, dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.Export.Dir)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "unknown key", content: "server:\n  colour: blue\n"},
		{name: "malformed yaml", content: "server: [port\n"},
		{name: "invalid port", content: "server:\n  port: 70000\n"},
		{name: "invalid level", content: "logging:\n  level: loud\n"},
		{name: "invalid encoding", content: "input:\n  encoding: ebcdic\n"},
		{name: "multi-character delimiter", content: "input:\n  delimiter: \"::\"\n"},
		{name: "file output without path", content: "logging:\n  output: file\n  file_path: \"\"\n"},
		{name: "storage without path", content: "storage:\n  enabled: true\n  database_path: \"\"\n"},
		{name: "invalid env value", content: "", env: map[string]string{"TRACKSTATS_SERVER_PORT": "eighty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfigFile(t, tt.content))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeConfig), "got %v", err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestLoad_StorageDisabledNeedsNoPath(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, "storage:\n  enabled: false\n  database_path: \"\"\n"))
	require.NoError(t, err)
	assert.False(t, cfg.Storage.Enabled)
}

func TestNormalizeEncoding(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"latin1", "latin1"},
		{"ISO-8859-1", "latin1"},
		{"Latin-1", "latin1"},
		{"UTF-8", "utf8"},
		{" utf8 ", "utf8"},
		{"ebcdic", "ebcdic"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeEncoding(tt.in))
		})
	}
}
