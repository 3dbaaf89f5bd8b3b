package handlers

import (
	"github.com/ecohistorias/eco-api/internal/credentials"
	apierrors "github.com/ecohistorias/eco-api/internal/errors"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/ecohistorias/eco-api/internal/middleware"
	"github.com/ecohistorias/eco-api/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

// Routes groups everything RegisterRoutes wires. Limiters and Metrics are optional.
type Routes struct {
	Auth     *AuthHandler
	Eco      *EcoHandler
	Sussurro *SussurroHandler
	Tag      *TagHandler
	Password *PasswordHandler
	Codinome *CodinomeHandler
	Health   *HealthHandler

	Tokens        credentials.TokenStore
	Metrics       *metrics.Metrics
	GlobalLimiter ratelimit.Limiter
	ForgotLimiter ratelimit.Limiter
}

// RegisterRoutes mounts the API on r. Session middleware must already be installed.
func RegisterRoutes(r *gin.Engine, rt Routes) {
	if rt.Metrics != nil {
		r.Use(rt.Metrics.Middleware())
		r.GET("/metrics", rt.Metrics.Handler())
	}

	r.GET("/health", rt.Health.Health)

	api := r.Group("/")
	if rt.GlobalLimiter != nil {
		api.Use(middleware.RateLimit("global", rt.GlobalLimiter, rt.Metrics, ""))
	}
	requireAuth := middleware.RequireAuth(rt.Tokens)

	api.POST("/register", rt.Auth.Register)
	api.POST("/auth", rt.Auth.Login)
	api.POST("/logout", rt.Auth.Logout)
	api.GET("/profile", requireAuth, rt.Auth.Profile)

	api.GET("/codinome", rt.Codinome.Generate)
	api.DELETE("/codinome", rt.Codinome.Reset)
	api.GET("/tags", rt.Tag.ListTags)

	eco := api.Group("/eco")
	{
		eco.GET("", rt.Eco.ListEcos)
		eco.GET("/:id", rt.Eco.GetEco)
		eco.POST("", requireAuth, rt.Eco.CreateEco)
		eco.PATCH("/:id", requireAuth, middleware.RequireEcoAuthor(), rt.Eco.UpdateEco)
		eco.DELETE("/:id", requireAuth, middleware.RequireEcoAuthor(), rt.Eco.DeleteEco)
	}

	sussurro := api.Group("/sussurro")
	{
		sussurro.GET("", rt.Sussurro.ListSussurros)
		sussurro.POST("", requireAuth, rt.Sussurro.CreateSussurro)
		sussurro.PATCH("/:id", requireAuth, middleware.RequireSussurroAuthor(), rt.Sussurro.UpdateSussurro)
		sussurro.DELETE("/:id", requireAuth, middleware.RequireSussurroAuthor(), rt.Sussurro.DeleteSussurro)
	}

	password := api.Group("/password")
	{
		forgot := []gin.HandlerFunc{rt.Password.ForgotPassword}
		if rt.ForgotLimiter != nil {
			forgot = append([]gin.HandlerFunc{
				middleware.RateLimit("forgot_password", rt.ForgotLimiter, rt.Metrics,
					"Too many password reset requests, please try again tomorrow"),
			}, forgot...)
		}
		password.POST("/forgot-password", forgot...)
		password.GET("/reset-password/:token", rt.Password.ValidateResetToken)
		password.POST("/reset-password", rt.Password.ResetPassword)
	}

	r.NoRoute(apierrors.RouteNotFound)
}
