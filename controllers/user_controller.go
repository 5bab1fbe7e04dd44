package controllers

import (
	"net/http"

	"Gin_postgres_redis_auth_service/app"
	"Gin_postgres_redis_auth_service/cache"
)

func (s *Srv) Me(c *app.Ctx) {
	id := app.UserID(c)
	if u := s.Users.Get(c.Request.Context(), id); u != nil {
		c.JSON(http.StatusOK, u)
		return
	}
	u, err := s.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	s.Users.Set(c.Request.Context(), u)
	c.JSON(http.StatusOK, cache.CachedUser{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		EmailVerified: u.EmailVerified,
	})
}

func (s *Srv) UpdateMe(c *app.Ctx) {
	var in struct {
		FullName string `json:"full_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := app.UserID(c)
	if err := s.Repo.UpdateUser(c.Request.Context(), id, map[string]any{"full_name": in.FullName}); err != nil {
		s.respondErr(c, err)
		return
	}
	s.Users.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) ChangePassword(c *app.Ctx) {
	var in struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Auth.ChangePassword(c.Request.Context(), app.UserID(c), in.CurrentPassword, in.NewPassword); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) DeleteMe(c *app.Ctx) {
	id := app.UserID(c)
	if err := s.Repo.SoftDeleteUser(c.Request.Context(), id); err != nil {
		s.respondErr(c, err)
		return
	}
	s.Users.Invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) RequestEmailChange(c *app.Ctx) {
	var in struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewEmail        string `json:"new_email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.EmailChange.Request(c.Request.Context(), app.UserID(c), in.CurrentPassword, in.NewEmail); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "verification code sent to the new address"})
}

func (s *Srv) VerifyEmailChange(c *app.Ctx) {
	var in struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.EmailChange.Verify(c.Request.Context(), app.UserID(c), in.Code); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
