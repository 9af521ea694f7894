// internal/config/loader_test.go
//
// Unit-tests for the layered loader: defaults, YAML, and CABS_ env vars.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, "conf")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "global.yaml"), []byte(body), 0o644))
}

func TestDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	assert.Equal(t, "strict", cfg.Forms.ServerProfile)
	assert.Equal(t, "support@krishnacabspvtltd.com", cfg.Support.Email)
	assert.Equal(t, 15*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 14, cfg.Logging.MaxAgeDays)
	assert.Equal(t, `"Krishna Cabs Support Team" <support@krishnacabspvtltd.com>`, cfg.Support.Recipient())
}

func TestYAMLOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	writeYAML(t, root, `
http:
  listen_addr: "127.0.0.1:9090"
  read_timeout: 3s
forms:
  server_profile: lenient
`)
	cfg, err := LoadFrom(root)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.ListenAddr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "lenient", cfg.Forms.ServerProfile)
	assert.Equal(t, int64(64<<10), cfg.Forms.MaxBodyBytes, "unset keys keep defaults")
	assert.Equal(t, filepath.Join(root, "logs"), cfg.LogDir())
}

func TestEnvOverridesYAML(t *testing.T) {
	root := t.TempDir()
	writeYAML(t, root, "forms:\n  server_profile: lenient\n")
	t.Setenv("CABS_FORMS__SERVER_PROFILE", "strict")
	t.Setenv("CABS_HTTP__FORCE_HTTPS", "true")

	cfg, err := LoadFrom(root)
	require.NoError(t, err)
	assert.Equal(t, "strict", cfg.Forms.ServerProfile)
	assert.True(t, cfg.HTTP.ForceHTTPS)
}

func TestValidationFailure(t *testing.T) {
	root := t.TempDir()
	writeYAML(t, root, `
forms:
  server_profile: loose
support:
  email: not-an-address
logging:
  level: chatty
`)
	_, err := LoadFrom(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ServerProfile")
	assert.Contains(t, err.Error(), "Email")
	assert.Contains(t, err.Error(), "Logging.Level")
}

func TestMalformedYAML(t *testing.T) {
	root := t.TempDir()
	writeYAML(t, root, "http: [")
	_, err := LoadFrom(root)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "forms.server_profile", envKey("CABS_FORMS__SERVER_PROFILE"))
	assert.Equal(t, "geo.db_path", envKey("CABS_GEO__DB_PATH"))
}
