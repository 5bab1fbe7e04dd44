package controllers

import (
	"net/http"

	"Gin_postgres_redis_auth_service/app"
)

func (s *Srv) Signup(c *app.Ctx) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		FullName string `json:"fullName"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	u, err := s.Auth.Signup(c.Request.Context(), in.Email, in.Password, in.FullName)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (s *Srv) Signin(c *app.Ctx) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	pair, err := s.Auth.Signin(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *Srv) Refresh(c *app.Ctx) {
	var in struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	pair, err := s.Auth.Refresh(c.Request.Context(), in.RefreshToken)
	if err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (s *Srv) Signout(c *app.Ctx) {
	if err := s.Auth.Signout(c.Request.Context(), app.UserID(c)); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) VerifyEmail(c *app.Ctx) {
	var in struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Verification.Verify(c.Request.Context(), in.Code); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) ResendVerification(c *app.Ctx) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Verification.Resend(c.Request.Context(), in.Email); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) ForgotPassword(c *app.Ctx) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Reset.Request(c.Request.Context(), in.Email); err != nil {
		s.respondErr(c, err)
		return
	}
	// Always ok: the response must not reveal whether the account exists.
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (s *Srv) ResetPassword(c *app.Ctx) {
	var in struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Reset.Reset(c.Request.Context(), in.Token, in.NewPassword); err != nil {
		s.respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
