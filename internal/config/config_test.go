package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		SecretKey:            "a-perfectly-reasonable-test-secret-key",
		Port:                 "8460",
		Env:                  "development",
		ImageMaxUploadSizeMB: 100,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid development config", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing secret", func(c *Config) { c.SecretKey = "" }, "SECRET_KEY is required"},
		{"zero upload limit", func(c *Config) { c.ImageMaxUploadSizeMB = 0 }, "IMAGE_MAX_UPLOAD_SIZE_MB"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.SecretKey = "change-me-in-production"
		}, "changed from the default"},
		{"short secret in production", func(c *Config) {
			c.Env = "production"
			c.SecretKey = "short"
		}, "at least 32 characters"},
		{"strong secret in production", func(c *Config) {
			c.Env = "production"
			c.SecretKey = strings.Repeat("s", 48)
		}, ""},
		{"short secret in development only warns", func(c *Config) {
			c.SecretKey = "short"
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestUsePostgres(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.UsePostgres())

	cfg.DBHost = "db.internal"
	assert.True(t, cfg.UsePostgres())
}
