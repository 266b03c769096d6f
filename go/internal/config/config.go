// Package config reads server settings from the environment and an optional
// YAML game file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/flipmatch/go/internal/deck"
	"github.com/mcdev12/flipmatch/go/internal/events"
	"github.com/mcdev12/flipmatch/go/internal/game"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds everything the gateway binary needs.
type Config struct {
	Port     string
	LogLevel zerolog.Level
	Game     game.Config
	// NATS.URL is empty when no bus is configured.
	NATS events.NATSConfig
}

// gameFile is the YAML form of the game settings. Unset fields keep the
// value from the environment.
type gameFile struct {
	PairCount        *int    `yaml:"pair_count"`
	TimeLimitSeconds *int    `yaml:"time_limit_seconds"`
	CountdownSeconds *int    `yaml:"countdown_seconds"`
	PreviewSeconds   *int    `yaml:"preview_seconds"`
	MatchSettleMS    *int    `yaml:"match_settle_ms"`
	MismatchSettleMS *int    `yaml:"mismatch_settle_ms"`
	StartGate        *bool   `yaml:"start_gate"`
	ValuesFile       *string `yaml:"values_file"`
}

// Load builds the configuration from the environment. GAME_CONFIG_FILE, when
// set, overrides the game settings.
func Load() (Config, error) {
	defaults := game.DefaultConfig()

	env := &envReader{}
	cfg := Config{
		Port: getEnv("PORT", "8080"),
		Game: game.Config{
			PairCount:        env.asInt("PAIR_COUNT", defaults.PairCount),
			TimeLimitSeconds: env.asInt("TIME_LIMIT_SECONDS", defaults.TimeLimitSeconds),
			CountdownSeconds: env.asInt("COUNTDOWN_SECONDS", defaults.CountdownSeconds),
			PreviewSeconds:   env.asInt("PREVIEW_SECONDS", defaults.PreviewSeconds),
			MatchSettle:      env.asMillis("MATCH_SETTLE_MS", defaults.MatchSettle),
			MismatchSettle:   env.asMillis("MISMATCH_SETTLE_MS", defaults.MismatchSettle),
			StartGate:        env.asBool("START_GATE", defaults.StartGate),
		},
		NATS: events.DefaultNATSConfig(),
	}
	if err := env.err(); err != nil {
		return Config{}, err
	}
	cfg.NATS.URL = os.Getenv("NATS_URL")
	cfg.NATS.Subject = getEnv("NATS_SUBJECT", cfg.NATS.Subject)

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	valuesFile := os.Getenv("VALUES_FILE")
	if path := os.Getenv("GAME_CONFIG_FILE"); path != "" {
		file, err := loadGameFile(path)
		if err != nil {
			return Config{}, err
		}
		file.apply(&cfg.Game)
		if file.ValuesFile != nil {
			valuesFile = *file.ValuesFile
		}
	}

	if valuesFile != "" {
		values, err := deck.LoadValues(valuesFile)
		if err != nil {
			return Config{}, err
		}
		cfg.Game.Values = values
	}

	if err := cfg.Game.Validate(); err != nil {
		return Config{}, err
	}
	// fail at startup rather than on the first game if there are too few faces
	if _, err := deck.Generate(cfg.Game.PairCount, cfg.Game.Values, nil); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadGameFile(path string) (*gameFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config file: %w", err)
	}

	var file gameFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}
	return &file, nil
}

func (f *gameFile) apply(cfg *game.Config) {
	if f.PairCount != nil {
		cfg.PairCount = *f.PairCount
	}
	if f.TimeLimitSeconds != nil {
		cfg.TimeLimitSeconds = *f.TimeLimitSeconds
	}
	if f.CountdownSeconds != nil {
		cfg.CountdownSeconds = *f.CountdownSeconds
	}
	if f.PreviewSeconds != nil {
		cfg.PreviewSeconds = *f.PreviewSeconds
	}
	if f.MatchSettleMS != nil {
		cfg.MatchSettle = time.Duration(*f.MatchSettleMS) * time.Millisecond
	}
	if f.MismatchSettleMS != nil {
		cfg.MismatchSettle = time.Duration(*f.MismatchSettleMS) * time.Millisecond
	}
	if f.StartGate != nil {
		cfg.StartGate = *f.StartGate
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envReader parses typed variables. Unset variables take the default; set
// but unparsable ones are collected as errors.
type envReader struct {
	errs []error
}

func (r *envReader) asInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%w: %s=%q is not an integer", game.ErrInvalidConfig, key, value))
		return defaultValue
	}
	return intValue
}

func (r *envReader) asBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%w: %s=%q is not a boolean", game.ErrInvalidConfig, key, value))
		return defaultValue
	}
	return boolValue
}

func (r *envReader) asMillis(key string, defaultValue time.Duration) time.Duration {
	if os.Getenv(key) == "" {
		return defaultValue
	}
	return time.Duration(r.asInt(key, 0)) * time.Millisecond
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}
