package app

import (
	"os"
	"strings"
	"time"

	"osrs_tax_columns/internal/hidden"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logLevels = map[string]zerolog.Level{
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"panic":    zerolog.PanicLevel,
	"disabled": zerolog.Disabled,
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	level, known := logLevels[levelStr]
	switch {
	case levelStr == "" && os.Getenv("ENV") == "production":
		level = zerolog.WarnLevel
	case levelStr == "":
		level = zerolog.InfoLevel
	case !known:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if levelStr != "" && !known {
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// GetEnvWithDefault fetches an environment variable with a default fallback.
func GetEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadConfig reads Config from the environment. A tick interval that does
// not parse or falls outside 200-500ms is replaced or clamped with a warning.
func LoadConfig() Config {
	cfg := Config{
		StorePath:    GetEnvWithDefault("OSRS_STORE_PATH", "osrs_tax.db"),
		StorageKey:   GetEnvWithDefault("OSRS_STORAGE_KEY", hidden.DefaultKey),
		TickInterval: DefaultTickInterval,
	}

	if raw := os.Getenv("OSRS_TICK_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Warn().Err(err).Str("value", raw).Msg("Invalid OSRS_TICK_INTERVAL, using default")
		} else {
			cfg.TickInterval = ClampInterval(d)
		}
	}

	log.Debug().
		Str("store_path", cfg.StorePath).
		Str("storage_key", cfg.StorageKey).
		Dur("tick_interval", cfg.TickInterval).
		Msg("Loaded configuration")
	return cfg
}

// ClampInterval keeps d within the supported tick range.
func ClampInterval(d time.Duration) time.Duration {
	clamped := min(max(d, MinTickInterval), MaxTickInterval)
	if clamped != d {
		log.Warn().Dur("requested", d).Dur("using", clamped).Msg("Tick interval out of range")
	}
	return clamped
}
