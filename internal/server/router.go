package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/lexiscreen/screening-backend/internal/handlers"
	"github.com/lexiscreen/screening-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName        string
	CORSOrigins        []string
	AuthMiddleware     *middleware.AuthMiddleware
	AuthHandler        *handlers.AuthHandler
	AccountHandler     *handlers.AccountHandler
	TestSessionHandler *handlers.TestSessionHandler
	MinigameHandler    *handlers.MinigameHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")

	// Public
	public := api.Group("/public/auth")
	{
		public.POST("/register", cfg.AuthHandler.Register)
		public.POST("/login", cfg.AuthHandler.Login)
		public.POST("/verify-email", cfg.AuthHandler.VerifyEmail)
	}

	// Account context: token without a selected profile is enough.
	account := api.Group("/account")
	account.Use(cfg.AuthMiddleware.RequireAccount())
	{
		account.POST("/profiles", cfg.AccountHandler.CreateProfile)
		account.GET("/profiles", cfg.AccountHandler.ListProfiles)
		account.GET("/profiles/:id", cfg.AccountHandler.GetProfile)
		account.PUT("/profiles/:id", cfg.AccountHandler.UpdateProfile)
		account.DELETE("/profiles/:id", cfg.AccountHandler.DeleteProfile)
		account.POST("/profiles/:id/select", cfg.AccountHandler.SelectProfile)
	}

	// Profile context: every test operation runs as a selected profile.
	user := api.Group("")
	user.Use(cfg.AuthMiddleware.RequireProfile())
	{
		user.POST("/test-session", cfg.TestSessionHandler.StartSession)
		user.GET("/test-session", cfg.TestSessionHandler.ListSessions)
		user.GET("/test-session/:id", cfg.TestSessionHandler.GetSession)
		user.POST("/test-session/:id/category", cfg.TestSessionHandler.StartCategory)
		user.POST("/test-session/:id/submit", cfg.TestSessionHandler.Submit)
		user.POST("/test-session/:id/rating", cfg.TestSessionHandler.SubmitRating)

		user.POST("/minigame", cfg.MinigameHandler.SubmitAttempt)
		user.GET("/minigame", cfg.MinigameHandler.ListAttempts)
	}

	return router
}
