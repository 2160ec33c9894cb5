// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is everything the tool needs to run. The backend address is
// configured once here; nothing else in the module knows about it.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DownloadDir    string
	FixtureAddr    string
	Debug          bool
}

// Load reads configuration from INNOBOARD_* environment variables,
// falling back to defaults that match a local backend.
func Load() (Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("baseUrl", "http://localhost:5000")
	v.SetDefault("requestTimeout", 0*time.Second) // transport default applies
	v.SetDefault("downloadDir", ".")
	v.SetDefault("fixtureAddr", ":5000")
	v.SetDefault("debug", false)

	// Load .env if present; a missing file is not an error.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return Config{}, err
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	v.SetEnvPrefix("INNOBOARD")
	v.AutomaticEnv()

	return Config{
		BaseURL:        v.GetString("baseUrl"),
		RequestTimeout: v.GetDuration("requestTimeout"),
		DownloadDir:    v.GetString("downloadDir"),
		FixtureAddr:    v.GetString("fixtureAddr"),
		Debug:          v.GetBool("debug"),
	}, nil
}
