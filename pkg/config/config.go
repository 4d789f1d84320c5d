package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORS    CORSConfig
	Log     LogConfig
	Planner PlannerConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig carries the genetic search defaults and the plan store TTL.
type PlannerConfig struct {
	PopulationSize  int
	MaxEvolutions   int
	AcceptableScore float64
	Seed            int64
	PlanTTL         time.Duration
}

// Load reads .env (when present) and the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PLANNER_POPULATION_SIZE", 50)
	v.SetDefault("PLANNER_MAX_EVOLUTIONS", 100)
	v.SetDefault("PLANNER_ACCEPTABLE_SCORE", 95.0)
	v.SetDefault("PLANNER_SEED", 0)
	v.SetDefault("PLANNER_PLAN_TTL", "30m")

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		CORS: CORSConfig{
			AllowedOrigins: splitNonEmpty(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Planner: PlannerConfig{
			PopulationSize:  v.GetInt("PLANNER_POPULATION_SIZE"),
			MaxEvolutions:   v.GetInt("PLANNER_MAX_EVOLUTIONS"),
			AcceptableScore: v.GetFloat64("PLANNER_ACCEPTABLE_SCORE"),
			Seed:            v.GetInt64("PLANNER_SEED"),
			PlanTTL:         v.GetDuration("PLANNER_PLAN_TTL"),
		},
	}

	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return nil, errors.New("ENV must be development or production")
	}
	if cfg.Planner.PopulationSize < 2 {
		return nil, errors.New("PLANNER_POPULATION_SIZE must be at least 2")
	}
	if cfg.Planner.MaxEvolutions < 1 {
		return nil, errors.New("PLANNER_MAX_EVOLUTIONS must be at least 1")
	}
	if cfg.Planner.PlanTTL <= 0 {
		cfg.Planner.PlanTTL = 30 * time.Minute
	}

	return cfg, nil
}

func splitNonEmpty(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
