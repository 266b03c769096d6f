package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mcdev12/flipmatch/go/internal/game"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "LOG_LEVEL", "PAIR_COUNT", "TIME_LIMIT_SECONDS", "COUNTDOWN_SECONDS",
	"PREVIEW_SECONDS", "MATCH_SETTLE_MS", "MISMATCH_SETTLE_MS", "START_GATE",
	"VALUES_FILE", "GAME_CONFIG_FILE", "NATS_URL", "NATS_SUBJECT",
}

// clearEnv blanks every variable Load reads; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, "flipmatch.events", cfg.NATS.Subject)

	want := game.DefaultConfig()
	assert.Equal(t, want.PairCount, cfg.Game.PairCount)
	assert.Equal(t, want.TimeLimitSeconds, cfg.Game.TimeLimitSeconds)
	assert.Equal(t, 400*time.Millisecond, cfg.Game.MatchSettle)
	assert.Equal(t, 800*time.Millisecond, cfg.Game.MismatchSettle)
	assert.True(t, cfg.Game.StartGate)
	assert.Nil(t, cfg.Game.Values)
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("PAIR_COUNT", "4")
	t.Setenv("TIME_LIMIT_SECONDS", "30")
	t.Setenv("MATCH_SETTLE_MS", "250")
	t.Setenv("START_GATE", "false")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 4, cfg.Game.PairCount)
	assert.Equal(t, 30, cfg.Game.TimeLimitSeconds)
	assert.Equal(t, 250*time.Millisecond, cfg.Game.MatchSettle)
	assert.False(t, cfg.Game.StartGate)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoad_UnparsableEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"PAIR_COUNT", "lots"},
		{"TIME_LIMIT_SECONDS", "1.5"},
		{"MISMATCH_SETTLE_MS", "slow"},
		{"START_GATE", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.ErrorIs(t, err, game.ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestLoad_ReportsEveryBadVariable(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAIR_COUNT", "abc")
	t.Setenv("PREVIEW_SECONDS", "xyz")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "PAIR_COUNT")
	assert.ErrorContains(t, err, "PREVIEW_SECONDS")
}

func TestLoad_GameFileOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAIR_COUNT", "8")
	t.Setenv("PREVIEW_SECONDS", "2")
	t.Setenv("GAME_CONFIG_FILE", filepath.Join("testdata", "game.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Game.PairCount)
	assert.Equal(t, 2, cfg.Game.PreviewSeconds)
	assert.Equal(t, 0, cfg.Game.CountdownSeconds)
	assert.Equal(t, time.Second, cfg.Game.MismatchSettle)
	assert.False(t, cfg.Game.StartGate)
	require.NotNil(t, cfg.Game.Values)
	assert.Len(t, cfg.Game.Values.Values(), 3)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "pair count too large for values",
			env:     map[string]string{"PAIR_COUNT": "4", "VALUES_FILE": filepath.Join("testdata", "values.yaml")},
			wantErr: game.ErrInvalidConfig,
		},
		{
			name:    "zero pairs",
			env:     map[string]string{"PAIR_COUNT": "0"},
			wantErr: game.ErrInvalidConfig,
		},
		{
			name: "bad log level",
			env:  map[string]string{"LOG_LEVEL": "loud"},
		},
		{
			name: "missing game file",
			env:  map[string]string{"GAME_CONFIG_FILE": filepath.Join("testdata", "missing.yaml")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MalformedGameFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pair_count: [oops"), 0o600))
	t.Setenv("GAME_CONFIG_FILE", path)

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse game config")
}
