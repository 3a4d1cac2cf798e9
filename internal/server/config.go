package server

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the server configuration.
type Config struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	DataDir string `mapstructure:"data_dir"`
}

// Addr returns the listen address as host:port.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(configPath string) (*viper.Viper, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.data_dir", "./data")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("database.path", "./data/airsight.db")

	// Active environment profile used when a request doesn't name one.
	// "adaptive" resolves thresholds from the baseline learner.
	v.SetDefault("profiles.active", "office")

	// Plugin defaults
	v.SetDefault("plugins.insight.enabled", true)
	v.SetDefault("plugins.insight.card_retention", "168h")
	v.SetDefault("plugins.insight.maintenance_interval", "1h")
	v.SetDefault("plugins.baseline.enabled", true)
	v.SetDefault("plugins.baseline.capacity", 500)
	v.SetDefault("plugins.baseline.persist_debounce", "1s")
	v.SetDefault("plugins.baseline.threshold_max_age", "15m")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("airsight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/airsight")
	}

	// Environment variable support: AS_SERVER_PORT=9090
	v.SetEnvPrefix("AS")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is fine -- use defaults
	}

	return v, nil
}
