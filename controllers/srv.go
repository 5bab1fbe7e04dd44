package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"Gin_postgres_redis_auth_service/app"
	"Gin_postgres_redis_auth_service/auth"
	"Gin_postgres_redis_auth_service/cache"
	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/db"
	"Gin_postgres_redis_auth_service/flows"
	"Gin_postgres_redis_auth_service/passkey"

	"github.com/gin-gonic/gin"
)

// Srv aggregates the services the handlers call into.
type Srv struct {
	Repo     *db.Repo
	Users    *cache.UserCache
	Tokens   *auth.TokenManager
	Auth     *auth.Service
	Passkeys *passkey.Service

	Verification *flows.EmailVerification
	Reset        *flows.PasswordReset
	EmailChange  *flows.EmailChange

	Log *slog.Logger
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	users := cache.NewUserCache(a.RDB)
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewTokenManager(a.Config.JWTSecret, a.Config.AccessTokenTTL, a.Config.RefreshTokenTTL)

	verification := flows.NewEmailVerification(repo, cache.NewEmailVerificationCache(a.RDB), a.Mailer, a.Log)
	reset := flows.NewPasswordReset(repo, cache.NewPasswordResetCache(a.RDB), a.Mailer, hasher, a.Log)
	emailChange := flows.NewEmailChange(repo, cache.NewEmailChangeCache(a.RDB), users, a.Mailer, hasher, a.Log)

	return &Srv{
		Repo:         repo,
		Users:        users,
		Tokens:       tokens,
		Auth:         auth.NewService(repo, hasher, tokens, verification, a.Log),
		Passkeys:     passkey.NewService(a.WA, repo),
		Verification: verification,
		Reset:        reset,
		EmailChange:  emailChange,
		Log:          a.Log,
	}
}

// respondErr maps the error taxonomy onto HTTP statuses. Internal details
// never leave the process.
func (s *Srv) respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrVerificationFailed):
		c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidOrExpired):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, common.ErrConflict),
		errors.Is(err, common.ErrDuplicateCredential):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	case errors.Is(err, common.ErrTransientIO):
		s.Log.ErrorContext(c.Request.Context(), "backend unavailable", "err", err)
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "temporarily unavailable"})
	default:
		s.Log.ErrorContext(c.Request.Context(), "internal error", "err", err)
		c.JSON(http.StatusInternalServerError, app.H{"error": "internal error"})
	}
}
