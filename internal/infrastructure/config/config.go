package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// Backends the console fronts.
	AuthAPIURL   string `env:"AUTH_API_URL,   default=http://localhost:8000"`
	ChatAPIURL   string `env:"CHAT_API_URL,   default=http://localhost:8000"`
	PromptAPIURL string `env:"PROMPT_API_URL, default=http://localhost:8000"`

	// ChatTimeout bounds one conversation turn end to end.
	ChatTimeout time.Duration `env:"CHAT_TIMEOUT, default=2m"`
	// APITimeout bounds the short auth/prompt backend calls.
	APITimeout time.Duration `env:"API_TIMEOUT, default=15s"`
	// SessionGrace is how long clients get to wind down after a
	// session-expired broadcast.
	SessionGrace time.Duration `env:"SESSION_GRACE, default=30s"`

	TraceWorkers int `env:"TRACE_WORKERS, default=8"`

	Mongo MongoConfig
	Redis RedisConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=intelliops_console"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
