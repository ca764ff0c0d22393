package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds settings for the authority and the client binaries.
type Config struct {
	Server ServerConfig
	Client ClientConfig
}

// ServerConfig holds the reference authority's settings.
type ServerConfig struct {
	Listen string
	// DSN enables the postgres move log when set.
	DSN   string
	Debug bool
	Seats int
}

// ClientConfig holds dragbot and zonedump settings.
type ClientConfig struct {
	ServerURL string `mapstructure:"server_url"`
	Table     string
	Seat      string
	Scoped    bool
}

// Load reads configuration from file and env. Env var overrides use prefix
// TINYMAHJONG_, e.g. TINYMAHJONG_SERVER_LISTEN.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.dsn", "")
	v.SetDefault("server.debug", false)
	v.SetDefault("server.seats", 4)
	v.SetDefault("client.server_url", "http://localhost:8080")
	v.SetDefault("client.table", "")
	v.SetDefault("client.seat", "0")
	v.SetDefault("client.scoped", false)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TINYMAHJONG_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "tinymahjong"))
		v.AddConfigPath(".")
		v.SetConfigName("tinymahjong")
	}

	v.SetEnvPrefix("TINYMAHJONG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// a missing default config file is fine; a broken or named one is not
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Server.Seats < 1 || c.Server.Seats > 4 {
		return Config{}, fmt.Errorf("server.seats must be between 1 and 4, got %d", c.Server.Seats)
	}
	return c, nil
}

