package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/avoronin/go-taskhub/internal/config"
)

// MustReadEnv reads the configuration from the environment. A missing
// required setting (the JWT secret or the Postgres credentials) is a
// startup failure.
func MustReadEnv() {
	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Msg("read env")

	config.SetGlobal(cfg)
}
