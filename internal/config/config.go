package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"./data/personas.db"`

	LLMProvider string `env:"LLM_PROVIDER" envDefault:"http"`
	LLMAPIKey   string `env:"LLM_API_KEY"`
	LLMBaseURL  string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	TrainingTickInterval time.Duration `env:"TRAINING_TICK_INTERVAL" envDefault:"80ms"`
	WizardIdleTTL        time.Duration `env:"WIZARD_IDLE_TTL" envDefault:"30m"`
	WizardSweepInterval  time.Duration `env:"WIZARD_SWEEP_INTERVAL" envDefault:"1m"`
	CommitLimitMax       int           `env:"COMMIT_LIMIT_MAX" envDefault:"5"`
	CommitLimitWindow    time.Duration `env:"COMMIT_LIMIT_WINDOW" envDefault:"1h"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
