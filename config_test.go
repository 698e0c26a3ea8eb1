package insighthub

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func validConfig() SiteConfig {
	return SiteConfig{
		AdminEmail:    "Admin@Example.com ",
		AdminPassword: "pw",
		SessionSecret: testSecret,
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.URL = "https://blog.example.com/"
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "InsightHub", cfg.Name)
	assert.Equal(t, "https://blog.example.com", cfg.URL)
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "data/insighthub.db", cfg.DatabasePath)
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, "logs", cfg.LogDir)
	assert.Equal(t, 5*time.Minute, cfg.SidebarCacheTTL)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		edit func(*SiteConfig)
	}{
		{"short secret", func(c *SiteConfig) { c.SessionSecret = "short" }},
		{"missing admin email", func(c *SiteConfig) { c.AdminEmail = "" }},
		{"bad admin email", func(c *SiteConfig) { c.AdminEmail = "admin" }},
		{"no password or hash", func(c *SiteConfig) { c.AdminPassword = "" }},
		{"bad url", func(c *SiteConfig) { c.URL = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.edit(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigYAMLWithEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "insighthub.yaml")
	yaml := `name: Field Notes
url: https://notes.example.com
admin_email: editor@example.com
admin_password_hash: $2a$10$abcdefghijklmnopqrstuv
session_secret: ` + testSecret + `
sidebar_cache_ttl: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("INSIGHTHUB_NAME", "Env Notes")
	t.Setenv("INSIGHTHUB_DATABASE_PATH", filepath.Join(dir, "blog.db"))
	t.Setenv("INSIGHTHUB_COOKIE_SECURE", "true")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "Env Notes", cfg.Name)
	assert.Equal(t, "https://notes.example.com", cfg.URL)
	assert.Equal(t, filepath.Join(dir, "blog.db"), cfg.DatabasePath)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Second, cfg.SidebarCacheTTL)
	assert.Equal(t, "editor@example.com", cfg.AdminEmail)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "session_secret", envKey("INSIGHTHUB_SESSION_SECRET"))
	assert.Equal(t, "smtp.host", envKey("INSIGHTHUB_SMTP__HOST"))
}
