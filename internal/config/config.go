// Package config loads application configuration from an optional YAML file,
// an optional .env file, and environment variables, in that order of
// precedence (environment wins).
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/skillsenselab/shelfmark/internal/api"
	"github.com/skillsenselab/shelfmark/internal/auth"
	"github.com/skillsenselab/shelfmark/internal/catalog"
	"github.com/skillsenselab/shelfmark/internal/database"
	"github.com/skillsenselab/shelfmark/internal/logger"
)

const envPrefix = "SHELFMARK"

// Config is the top-level application configuration.
type Config struct {
	Server   api.Config      `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	Auth     auth.Config     `mapstructure:"auth"`
	Logging  logger.Config   `mapstructure:"logging"`
	Catalog  catalog.Config  `mapstructure:"catalog"`
}

// ApplyDefaults sets sensible defaults for all unset sections.
func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Catalog.ApplyDefaults()
}

// Validate checks every section and returns the first failure.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

// Load reads configuration for the service. configFile may be empty, in which
// case standard locations are searched; a missing file is not an error since
// everything can come from the environment.
func Load(configFile string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	// Bind keys explicitly so AutomaticEnv covers values absent from the file.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKeys lists every config key so SHELFMARK_* environment variables are
// honored even without a config file.
var envKeys = []string{
	"server.host", "server.port", "server.read_timeout", "server.write_timeout",
	"server.idle_timeout",
	"database.dsn", "database.max_open_conns", "database.max_idle_conns",
	"database.conn_max_lifetime", "database.max_retries", "database.auto_migrate",
	"database.log_level", "database.slow_query_threshold",
	"auth.jwt_secret", "auth.token_ttl", "auth.password_algorithm",
	"auth.bcrypt_cost", "auth.min_password_length",
	"logging.level", "logging.format", "logging.output", "logging.caller",
	"catalog.base_url", "catalog.timeout",
}

func loadEnvFile() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func findConfigFile() string {
	searchPaths := []string{
		"./cmd/api/config.yml",
		"./config/config.yml",
		"./config.yml",
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
