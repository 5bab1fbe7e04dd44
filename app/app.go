package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"Gin_postgres_redis_auth_service/db"
	"Gin_postgres_redis_auth_service/mail"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Aliases to shorten handler signatures.
type Ctx = gin.Context
type H = gin.H

// App aggregates the process-wide dependencies, wired once at startup.
type App struct {
	Router *gin.Engine
	DB     *gorm.DB
	RDB    *redis.Client
	WA     *webauthn.WebAuthn
	Mailer mail.Mailer
	Config Config
	Log    *slog.Logger
}

func MustNew() *App {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := LoadConfig()
	if err != nil {
		log.Error("config", "err", err)
		os.Exit(1)
	}

	dbConn, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Error("postgres", "err", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis", "err", err)
		os.Exit(1)
	}

	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		log.Error("webauthn", "err", err)
		os.Exit(1)
	}

	var mailer mail.Mailer
	switch cfg.MailDriver {
	case "ses":
		mailer, err = mail.NewSESMailer(ctx, cfg.AWSRegion, cfg.MailFrom)
		if err != nil {
			log.Error("ses", "err", err)
			os.Exit(1)
		}
	default:
		mailer = &mail.LogMailer{Log: log}
	}

	r := gin.Default()
	useCORS(r, cfg.WebOrigin)

	return &App{
		Router: r, DB: dbConn, RDB: rdb, WA: wa,
		Mailer: mailer, Config: cfg, Log: log,
	}
}

func (a *App) Close() { _ = a.RDB.Close() }
