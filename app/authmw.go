package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"Gin_postgres_redis_auth_service/auth"
	"Gin_postgres_redis_auth_service/cache"
	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/models"

	"github.com/gin-gonic/gin"
)

// UserFinder is the store lookup the middleware needs. *db.Repo satisfies it.
type UserFinder interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthRequired validates the bearer token and confirms the user still
// exists, going through the Redis read-model first so the hot path skips
// Postgres. A store outage is surfaced as 503, not as a sign-out.
func AuthRequired(tokens *auth.TokenManager, users *cache.UserCache, finder UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		uid, err := tokens.ParseAccess(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		if cu := users.Get(c.Request.Context(), uid); cu == nil {
			u, err := finder.FindUserByID(c.Request.Context(), uid)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				} else {
					c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"error": "temporarily unavailable"})
				}
				return
			}
			users.Set(c.Request.Context(), u)
		}

		c.Set("userID", uid)
		c.Next()
	}
}

// UserID reads the authenticated user id set by AuthRequired.
func UserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	uid, _ := v.(string)
	return uid
}

const maintenanceTokenHeader = "X-Maintenance-Token"

// RequireMaintenanceToken guards operational endpoints with a shared secret.
// With no token configured the endpoints answer 404, same as a wrong secret,
// so probing reveals nothing.
func RequireMaintenanceToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(maintenanceTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusNotFound, H{"error": "not found"})
			return
		}
		c.Next()
	}
}
