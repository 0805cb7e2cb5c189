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
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/spam-sentinel/")
	v.AddConfigPath("$HOME/.spam-sentinel")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("SPAM_SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

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

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// IMAP defaults
	v.SetDefault("imap.server", "imap.gmail.com:993")
	v.SetDefault("imap.email", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.lookback_days", 60)

	// Monitor defaults
	v.SetDefault("monitor.check_interval", 300)
	v.SetDefault("monitor.initial_load", 20)
	v.SetDefault("monitor.poll_limit", 10)
	v.SetDefault("monitor.model", "Voting Classifier")
	v.SetDefault("monitor.auto_label", true)

	// Notification defaults
	v.SetDefault("notification.notify_on_spam", true)
	v.SetDefault("notification.notify_on_ham", false)
	v.SetDefault("notification.telegram_token", "")
	v.SetDefault("notification.telegram_chat_id", "")

	// Model artifact defaults
	v.SetDefault("models.dir", "./models")

	// Spam defaults
	v.SetDefault("spam.whitelisted_domains", []string{})

	// Seen-store defaults
	v.SetDefault("seen.type", "memory")
	v.SetDefault("seen.retention", "168h")
	v.SetDefault("seen.cleanup_frequency", "1h")
	v.SetDefault("seen.sqlite_path", "/data/seen_messages.db")
	v.SetDefault("seen.mysql_dsn", "user:password@tcp(localhost:3306)/spam_sentinel")

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
