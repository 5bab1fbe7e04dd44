package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Gin_postgres_redis_auth_service/auth"
	"Gin_postgres_redis_auth_service/cache"
	"Gin_postgres_redis_auth_service/common"
	"Gin_postgres_redis_auth_service/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFinder struct {
	user  *models.User
	err   error
	calls int
}

func (f *fakeFinder) FindUserByID(context.Context, string) (*models.User, error) {
	f.calls++
	return f.user, f.err
}

func authTestRouter(t *testing.T, finder *fakeFinder) (*gin.Engine, *auth.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := auth.NewTokenManager("test-secret", 15*time.Minute, time.Hour)
	r := gin.New()
	r.GET("/protected", AuthRequired(tokens, cache.NewUserCache(rdb), finder), func(c *Ctx) {
		c.JSON(http.StatusOK, H{"userID": UserID(c)})
	})
	return r, tokens
}

func getProtected(r *gin.Engine, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredNoToken(t *testing.T) {
	r, _ := authTestRouter(t, &fakeFinder{})
	assert.Equal(t, http.StatusUnauthorized, getProtected(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, getProtected(r, "garbage").Code)
}

func TestAuthRequiredMissingUser(t *testing.T) {
	r, tokens := authTestRouter(t, &fakeFinder{err: common.ErrNotFound})
	tok, err := tokens.IssueAccess(uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, getProtected(r, tok).Code)
}

func TestAuthRequiredStoreOutage(t *testing.T) {
	finder := &fakeFinder{err: fmt.Errorf("%w: connection refused", common.ErrTransientIO)}
	r, tokens := authTestRouter(t, finder)
	tok, err := tokens.IssueAccess(uuid.NewString())
	require.NoError(t, err)

	// an unreachable store must not read as a sign-out
	assert.Equal(t, http.StatusServiceUnavailable, getProtected(r, tok).Code)
}

func TestAuthRequiredCachesUser(t *testing.T) {
	u := &models.User{ID: uuid.NewString(), Email: "ada@example.com"}
	finder := &fakeFinder{user: u}
	r, tokens := authTestRouter(t, finder)
	tok, err := tokens.IssueAccess(u.ID)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, getProtected(r, tok).Code)
	assert.Equal(t, http.StatusOK, getProtected(r, tok).Code)
	assert.Equal(t, 1, finder.calls, "second request is served from the read-model")
}

func maintTestRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/internal/maintenance/ping", RequireMaintenanceToken(token), func(c *Ctx) {
		c.JSON(http.StatusOK, H{"ok": true})
	})
	return r
}

func postMaint(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/internal/maintenance/ping", nil)
	if header != "" {
		req.Header.Set("X-Maintenance-Token", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireMaintenanceToken(t *testing.T) {
	r := maintTestRouter("sekrit")
	assert.Equal(t, http.StatusNotFound, postMaint(r, "").Code)
	assert.Equal(t, http.StatusNotFound, postMaint(r, "wrong").Code)
	assert.Equal(t, http.StatusOK, postMaint(r, "sekrit").Code)
}

func TestMaintenanceDisabledWithoutToken(t *testing.T) {
	r := maintTestRouter("")
	// no configured secret means no way in, not an open endpoint
	assert.Equal(t, http.StatusNotFound, postMaint(r, "").Code)
	assert.Equal(t, http.StatusNotFound, postMaint(r, "anything").Code)
}
