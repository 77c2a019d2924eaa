package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "localhost", config.Listen.Host)
	assert.Equal(t, 2018, config.Listen.Port)
	assert.Equal(t, 4096, config.Listen.BufferSize)
	assert.False(t, config.Listen.Echo)
	assert.False(t, config.Capture.Enabled)
	assert.Equal(t, "./captures", config.Capture.DataDir)
	assert.Empty(t, config.Record.Path)
	assert.Equal(t, time.Second, config.Record.FsyncInterval)
	assert.False(t, config.HTTP.Enabled)
	assert.Equal(t, "127.0.0.1", config.HTTP.Bind)
	assert.Equal(t, 8080, config.HTTP.Port)
	assert.Empty(t, config.Tracing.Endpoint)
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, config.Validate())
}

func TestConfigAddrs(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, "localhost:2018", config.ListenAddr())
	assert.Equal(t, "127.0.0.1:8080", config.HTTPAddr())

	config.Listen.Host = "::1"
	assert.Equal(t, "[::1]:2018", config.ListenAddr())
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "negative listen port",
			mutate:  func(c *Config) { c.Listen.Port = -1 },
			wantErr: "listen.port",
		},
		{
			name:    "zero buffer",
			mutate:  func(c *Config) { c.Listen.BufferSize = 0 },
			wantErr: "listen.buffer_size",
		},
		{
			name: "http port out of range",
			mutate: func(c *Config) {
				c.HTTP.Enabled = true
				c.HTTP.Port = 70000
			},
			wantErr: "http.port",
		},
		{
			name: "capture without dir",
			mutate: func(c *Config) {
				c.Capture.Enabled = true
				c.Capture.DataDir = ""
			},
			wantErr: "capture.data_dir",
		},
		{
			name:    "negative fsync interval",
			mutate:  func(c *Config) { c.Record.FsyncInterval = -time.Second },
			wantErr: "record.fsync_interval",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("load existing config", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		expectedConfig := &Config{
			Listen: Listen{
				Host:       "0.0.0.0",
				Port:       7654,
				BufferSize: 1024,
				Echo:       true,
			},
			Capture: Capture{
				Enabled: true,
				DataDir: "/custom/captures",
			},
			Record: Record{
				Path:          "/custom/session.rec",
				FsyncInterval: 250 * time.Millisecond,
			},
			HTTP: HTTP{
				Enabled: true,
				Bind:    "0.0.0.0",
				Port:    9000,
				APIKey:  "test-api-key",
			},
			Tracing: Tracing{
				Endpoint:    "localhost:4317",
				ServiceName: "gamestate-test",
			},
			Logging: Logging{
				Level: "debug",
			},
		}

		err := SaveConfig(expectedConfig, configPath)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, expectedConfig, loadedConfig)
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "partial.yaml")
		err := os.WriteFile(configPath, []byte("listen:\n  port: 3333\nrecord:\n  fsync_interval: 5s\n"), 0644)
		require.NoError(t, err)

		loadedConfig, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, 3333, loadedConfig.Listen.Port)
		assert.Equal(t, "localhost", loadedConfig.Listen.Host)
		assert.Equal(t, 4096, loadedConfig.Listen.BufferSize)
		assert.Equal(t, 5*time.Second, loadedConfig.Record.FsyncInterval)
		assert.Equal(t, "info", loadedConfig.Logging.Level)
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := LoadConfig("/non/existent/config.yaml")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "config file does not exist")
	})

	t.Run("load invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "invalid.yaml")
		err := os.WriteFile(configPath, []byte("invalid: yaml: content: ["), 0644)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("load config failing validation", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		err := os.WriteFile(configPath, []byte("logging:\n  level: loud\n"), 0644)
		require.NoError(t, err)

		_, err = LoadConfig(configPath)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config file")
	})
}

func TestSaveConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := DefaultConfig()

	err := SaveConfig(config, configPath)
	require.NoError(t, err)

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loadedConfig, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, config, loadedConfig)
}

func TestSaveConfigErrorHandling(t *testing.T) {
	config := DefaultConfig()

	// A regular file where a directory is expected
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := SaveConfig(config, filepath.Join(blocker, "config.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create config directory")
}

func TestGetDefaultConfigPath(t *testing.T) {
	path := GetDefaultConfigPath()
	assert.NotEmpty(t, path)
	assert.Contains(t, path, "gamestate")
	assert.Contains(t, path, ".yaml")
}

func TestConfigExists(t *testing.T) {
	tmpDir := t.TempDir()

	existingPath := filepath.Join(tmpDir, "exists.yaml")
	nonExistentPath := filepath.Join(tmpDir, "does-not-exist.yaml")

	err := os.WriteFile(existingPath, []byte("test"), 0644)
	require.NoError(t, err)

	assert.True(t, ConfigExists(existingPath))
	assert.False(t, ConfigExists(nonExistentPath))
}
