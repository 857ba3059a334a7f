package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return NewFromFile("")
}

// NewFromFile creates a configuration instance reading the given file, or
// searching the default locations when path is empty
func NewFromFile(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/phish-filter/")
		v.AddConfigPath("$HOME/.phish-filter")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)
	bindEnv(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults and environment
// overrides but no config file
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)
	return v
}

// bindEnv lets PHISH_FILTER_* variables override any key, e.g.
// PHISH_FILTER_RULES_SHORTENER_POINTS for rules.shortener.points
func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISH_FILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.filter_type", "postfix")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_phishing", false)
	v.SetDefault("server.headers.status", "X-Phish-Status")
	v.SetDefault("server.headers.score", "X-Phish-Score")
	v.SetDefault("server.headers.level", "X-Phish-Level")
	v.SetDefault("server.headers.indicators", "X-Phish-Indicators")
	v.SetDefault("server.postfix.enabled", true)
	v.SetDefault("server.postfix.address", "127.0.0.1")
	v.SetDefault("server.postfix.port", 10026)
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.subject_prefix", "[**PHISHING**] ")

	// Scoring defaults
	v.SetDefault("scoring.thresholds.critical", 90)
	v.SetDefault("scoring.thresholds.dangerous", 76)
	v.SetDefault("scoring.thresholds.likely_phishing", 51)
	v.SetDefault("scoring.thresholds.suspicious", 21)

	// Rule defaults
	v.SetDefault("rules.buzzword.points", 20)
	v.SetDefault("rules.buzzword.keywords", []string{"urgent"})
	v.SetDefault("rules.shortener.points", 40)
	v.SetDefault("rules.impersonation.points", 50)
	v.SetDefault("rules.typosquat.enabled", false)
	v.SetDefault("rules.typosquat.points", 30)

	// Phishing policy defaults
	v.SetDefault("phish.block_level", "likely_phishing")
	v.SetDefault("phish.allowlisted_domains", []string{})

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.enabled", true)
	v.SetDefault("store.retention", "720h")
	v.SetDefault("store.cleanup_frequency", "1h")
	v.SetDefault("store.sqlite_path", "/data/phish_assessments.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/phish_filter")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen_address", "127.0.0.1:9110")

	// CLI defaults
	v.SetDefault("cli.verbose", false)
	v.SetDefault("cli.output", "text")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
