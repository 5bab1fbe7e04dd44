package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Port        string `env:"PORT" envDefault:"3001"`
	DatabaseDSN string `env:"DATABASE_DSN,required"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	WebOrigin     string   `env:"WEB_ORIGIN" envDefault:"http://localhost:3000"`
	RPDisplayName string   `env:"RP_DISPLAY_NAME" envDefault:"Auth Service"`
	RPID          string   `env:"RP_ID" envDefault:"localhost"`
	RPOrigins     []string `env:"RP_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	JWTSecret       string        `env:"JWT_SECRET,required"`
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`

	// MaintenanceToken unlocks /internal/maintenance routes; empty disables
	// them.
	MaintenanceToken string `env:"MAINTENANCE_TOKEN"`

	// MailDriver is "log" or "ses".
	MailDriver string `env:"MAIL_DRIVER" envDefault:"log"`
	MailFrom   string `env:"MAIL_FROM"`
	AWSRegion  string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func LoadConfig() (Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
