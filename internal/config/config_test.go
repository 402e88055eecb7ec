package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:         "8380",
		Env:          "development",
		JWTSecret:    "secure-secret-at-least-32-chars-long",
		DBDriver:     "postgres",
		DBPassword:   "secure-password",
		DBSSLMode:    "require",
		DBSQLitePath: "test.db",
		DBSchemaMode: "hybrid",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.DBDriver = "sqlite"; c.DBSQLitePath = "" }, true},
		{"sqlite with path", func(c *Config) { c.DBDriver = "sqlite" }, false},
		{"unknown schema mode", func(c *Config) { c.DBSchemaMode = "yolo" }, true},
		{"negative role ttl", func(c *Config) { c.RoleCacheTTLSeconds = -1 }, true},
		{"production default secret", func(c *Config) { c.Env = "production"; c.JWTSecret = defaultJWTSecret }, true},
		{"production disabled ssl", func(c *Config) { c.Env = "prod"; c.DBSSLMode = "disable" }, true},
		{"production ok", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_SQLITE_PATH", "/tmp/dashkeeper-test.db")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "/tmp/dashkeeper-test.db", c.DBSQLitePath)
	assert.Equal(t, 300, c.RoleCacheTTLSeconds)
}
