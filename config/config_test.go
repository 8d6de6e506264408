package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load([]string{writeConfigFile(t, "")}, nil)
	require.NoError(t, err)

	assert.Equal(t, 8093, cfg.Server.Port)
	assert.Equal(t, "./data", cfg.Server.DataDir)
	assert.Equal(t, 60, cfg.Policy.PollInterval)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
env: prod
server:
  port: 9000
  data_dir: /srv/files
policy:
  file: policies.yaml
  poll_interval: 30
log:
  level: warn
cors:
  enabled: true
  allowed_origins: ["https://example.com"]
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/srv/files", cfg.Server.DataDir)
	assert.Equal(t, "policies.yaml", cfg.Policy.File)
	assert.Equal(t, 30, cfg.Policy.PollInterval)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://example.com"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9000\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("policy-file", "", "")
	require.NoError(t, flags.Parse([]string{"--port=7777", "--policy-file=p.yaml"}))

	cfg, err := config.Load([]string{path}, flags)
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "p.yaml", cfg.Policy.File)
}

func TestLoadUnchangedFlagsDoNotOverride(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9000\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 1234, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := config.Load([]string{path}, flags)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 9000\n")
	t.Setenv("EDGEGATE_SERVER_PORT", "8111")

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 8111, cfg.Server.Port)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "port out of range", content: "server:\n  port: 99999\n"},
		{name: "bad log level", content: "log:\n  level: loud\n"},
		{name: "zero poll interval", content: "policy:\n  poll_interval: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load([]string{writeConfigFile(t, tt.content)}, nil)
			assert.Error(t, err)
		})
	}
}

func TestConfigContext(t *testing.T) {
	cfg := &config.Config{Env: "test"}
	ctx := config.WithContext(context.Background(), cfg)

	got, err := config.FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, cfg, got)

	_, err = config.FromContext(context.Background())
	assert.Error(t, err)
}
