package routes

import (
	"Gin_postgres_redis_auth_service/app"
	"Gin_postgres_redis_auth_service/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)

	authMW := app.AuthRequired(s.Tokens, s.Users, s.Repo)

	// ------------------------------
	// Password auth (public)
	// ------------------------------
	pub := r.Group("/auth")
	{
		pub.POST("/signup", s.Signup)
		pub.POST("/signin", s.Signin)
		pub.POST("/refresh", s.Refresh)

		pub.POST("/verify-email", s.VerifyEmail)
		pub.POST("/resend-verification", s.ResendVerification)

		pub.POST("/forgot-password", s.ForgotPassword)
		pub.POST("/reset-password", s.ResetPassword)
	}

	r.POST("/auth/signout", authMW, s.Signout)

	// ------------------------------
	// WebAuthn ceremonies
	// ------------------------------
	wa := r.Group("/webauthn")
	{
		// public: authentication, email optional for discoverable flow
		wa.POST("/login/begin", s.BeginPasskeyLogin)
		wa.POST("/login/finish", s.FinishPasskeyLogin)
	}

	waAuth := wa.Group("", authMW)
	{
		waAuth.POST("/register/begin", s.BeginPasskeyRegistration)
		waAuth.POST("/register/finish", s.FinishPasskeyRegistration)
	}

	// ------------------------------
	// Passkey management
	// ------------------------------
	keys := r.Group("/api/passkeys", authMW)
	{
		keys.GET("", s.ListPasskeys)
		keys.PATCH("/:id", s.RenamePasskey)
		keys.DELETE("/:id", s.DeletePasskey)
	}

	// ------------------------------
	// Maintenance
	// ------------------------------
	maintMW := app.RequireMaintenanceToken(a.Config.MaintenanceToken)
	r.POST("/internal/maintenance/expired-challenges", maintMW, func(c *app.Ctx) {
		n, err := s.Repo.DeleteExpiredChallenges(c.Request.Context())
		if err != nil {
			c.JSON(503, app.H{"error": "temporarily unavailable"})
			return
		}
		c.JSON(200, app.H{"deleted": n})
	})

	// ------------------------------
	// Account
	// ------------------------------
	me := r.Group("/api/me", authMW)
	{
		me.GET("", s.Me)
		me.PATCH("", s.UpdateMe)
		me.DELETE("", s.DeleteMe)

		me.POST("/password", s.ChangePassword)
		me.POST("/email-change", s.RequestEmailChange)
		me.POST("/email-change/verify", s.VerifyEmailChange)
	}
}
