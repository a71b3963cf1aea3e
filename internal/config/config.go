// Package config loads settings for the sqlfrag tool.
package config

import (
	"errors"
	"os"

	"github.com/gandaldf/sqlfrag"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the tool configuration.
type Config struct {
	Dialect     sqlfrag.Dialect
	DatabaseURL string
	Debug       bool
}

// Load reads configuration from, in increasing priority: defaults, an
// optional .sqlfrag.yaml in dir, .env in dir, and SQLFRAG_* environment
// variables. DATABASE_URL is used when database_url is not set.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".sqlfrag")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("SQLFRAG")
	v.AutomaticEnv()

	v.SetDefault("dialect", "postgres")
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	env := dir + string(os.PathSeparator) + ".env"
	if _, err := os.Stat(env); err == nil {
		if err := godotenv.Load(env); err != nil {
			return nil, err
		}
	}

	d, err := sqlfrag.ParseDialect(v.GetString("dialect"))
	if err != nil {
		return nil, err
	}

	url := v.GetString("database_url")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}

	return &Config{
		Dialect:     d,
		DatabaseURL: url,
		Debug:       v.GetBool("debug"),
	}, nil
}
