package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
}

type EnvConfig interface {
	GetAppName() string
	GetBaseURL() string
	GetDataFolder() string
	GetPageSize() int
	GetHTTPTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
}

// New loads .env (when present) and returns the environment-backed config.
func New() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}
	return mainConfig{}
}
