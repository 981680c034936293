package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	LogDir      string
	// Debug flags
	Debug bool
}

// fileConfig is the optional config.yaml overlay. Every field is a
// pointer so an absent key leaves the env-derived value untouched.
type fileConfig struct {
	Port        *string `yaml:"port"`
	Environment *string `yaml:"environment"`
	DatabaseURL *string `yaml:"database_url"`
	CORSOrigins *string `yaml:"cors_origins"`
	TablePrefix *string `yaml:"table_prefix"`
	LogDir      *string `yaml:"log_dir"`
	Debug       *bool   `yaml:"debug"`
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		LogDir:      getEnv("LOG_DIR", "logs"),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}

	if path := getEnv("CONFIG_FILE", "config.yaml"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
		}
	}

	return cfg
}

// applyFile overlays values from a YAML file onto the config. A missing
// file is not an error; the env-only config stands.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.Environment != nil {
		c.Environment = *fc.Environment
		c.TablePrefix = getTablePrefix(*fc.Environment)
	}
	if fc.DatabaseURL != nil {
		c.DatabaseURL = *fc.DatabaseURL
	}
	if fc.CORSOrigins != nil {
		c.CORSOrigins = *fc.CORSOrigins
	}
	if fc.TablePrefix != nil {
		c.TablePrefix = *fc.TablePrefix
	}
	if fc.LogDir != nil {
		c.LogDir = *fc.LogDir
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}

	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	case "dev":
		return "dev_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
