package config

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds everything the console needs at startup. The backend base URL
// is the only required value; everything else has a sane default.
type Config struct {
	ListenAddr string `env:"ADMIN_ADDR,   default=:3000"`
	APIBaseURL string `env:"API_BASE_URL, required"`

	// APITimeout bounds every request to the backend.
	APITimeout time.Duration `env:"API_TIMEOUT, default=10s"`

	LogLevel  string `env:"LOG_LEVEL, default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`
}

// Load reads .env (when present) and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
