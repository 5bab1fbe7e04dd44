package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"Gin_postgres_redis_auth_service/app"
)

// ===== Registration (authenticated) =====

func (s *Srv) BeginPasskeyRegistration(c *app.Ctx) {
	opts, err := s.Passkeys.BeginRegistration(c.Request.Context(), app.UserID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"options": opts})
}

func (s *Srv) FinishPasskeyRegistration(c *app.Ctx) {
	var in struct {
		Credential json.RawMessage `json:"credential" binding:"required"`
		Name       string          `json:"name"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	cred, err := s.Passkeys.FinishRegistration(c.Request.Context(), app.UserID(c), in.Credential, in.Name)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, cred)
}

// ===== Authentication (public) =====

func (s *Srv) BeginPasskeyLogin(c *app.Ctx) {
	var in struct {
		Email string `json:"email"` // empty = discoverable
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	opts, err := s.Passkeys.BeginAuthentication(c.Request.Context(), in.Email)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"options": opts})
}

func (s *Srv) FinishPasskeyLogin(c *app.Ctx) {
	var in struct {
		Credential json.RawMessage `json:"credential" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	userID, err := s.Passkeys.FinishAuthentication(c.Request.Context(), in.Credential)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	pair, err := s.Auth.IssueTokens(c.Request.Context(), userID)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// ===== Management (authenticated) =====

func (s *Srv) ListPasskeys(c *app.Ctx) {
	creds, err := s.Passkeys.List(c.Request.Context(), app.UserID(c))
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"passkeys": creds})
}

func passkeyID(c *app.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad passkey id"})
		return 0, false
	}
	return uint(id), true
}

func (s *Srv) RenamePasskey(c *app.Ctx) {
	id, ok := passkeyID(c)
	if !ok {
		return
	}
	var in struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Passkeys.Rename(c.Request.Context(), app.UserID(c), id, in.Name); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) DeletePasskey(c *app.Ctx) {
	id, ok := passkeyID(c)
	if !ok {
		return
	}
	if err := s.Passkeys.Delete(c.Request.Context(), app.UserID(c), id); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
