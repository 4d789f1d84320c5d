package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 50, cfg.Planner.PopulationSize)
	assert.Equal(t, 100, cfg.Planner.MaxEvolutions)
	assert.Equal(t, 95.0, cfg.Planner.AcceptableScore)
	assert.Equal(t, 30*time.Minute, cfg.Planner.PlanTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", EnvProduction)
	t.Setenv("PORT", "9000")
	t.Setenv("PLANNER_POPULATION_SIZE", "24")
	t.Setenv("PLANNER_SEED", "1234")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 24, cfg.Planner.PopulationSize)
	assert.Equal(t, int64(1234), cfg.Planner.Seed)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("ENV", "staging")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsTinyPopulation(t *testing.T) {
	t.Setenv("PLANNER_POPULATION_SIZE", "1")
	_, err := Load()
	assert.Error(t, err)
}
