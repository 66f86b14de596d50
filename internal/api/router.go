package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fooddelivery/delivery-platform/internal/api/handler"
	"github.com/fooddelivery/delivery-platform/internal/api/middleware"
	"github.com/fooddelivery/delivery-platform/internal/core/domain"
	"github.com/fooddelivery/delivery-platform/internal/core/ports"
	"github.com/fooddelivery/delivery-platform/internal/core/service"
	"github.com/fooddelivery/delivery-platform/internal/infrastructure/config"
	mongodb "github.com/fooddelivery/delivery-platform/internal/infrastructure/db/mongo"
	redisdb "github.com/fooddelivery/delivery-platform/internal/infrastructure/db/redis"
)

// NewRouter builds the user-service Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, publisher ports.EventPublisher, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("user_service"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	tokenRepo := redisdb.NewTokenRepository(rdb)

	codec := service.NewSessionCodec(cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour)
	tokenService := service.NewLifecycleTokenService(tokenRepo, userRepo, publisher, cfg.ResetURLBase, log)
	authService := service.NewAuthService(userRepo, tokenService, codec, publisher, cfg.ConfirmURLBase, log)
	googleService := service.NewGoogleAuthService(userRepo, tokenService, codec, publisher, cfg.ConfirmURLBase, log)
	userService := service.NewUserService(userRepo, tokenService, publisher, cfg.ConfirmURLBase, log)

	authHandler := handler.NewAuthHandler(authService, googleService)
	userHandler := handler.NewUserHandler(userService)
	authRequired := middleware.Auth(codec)

	// --- Auth routes (public) ---
	auth := e.Group("/api/auth")
	auth.POST("/signin", authHandler.SignIn)
	auth.POST("/signup", authHandler.SignUp)
	auth.GET("/confirm", authHandler.Confirm)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.GET("/password/validate", authHandler.ValidateResetToken)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.POST("/google", authHandler.Google)

	// --- User routes (authenticated) ---
	users := e.Group("/api/users", authRequired)
	users.GET("/profile", userHandler.GetProfile)
	users.PUT("/profile", userHandler.UpdateProfile)
	users.POST("/change-password", userHandler.ChangePassword)

	// --- Admin routes ---
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	users.GET("", userHandler.ListUsers, adminOnly)
	users.POST("", userHandler.CreateByAdmin, adminOnly)
	users.GET("/role/:role", userHandler.ListByRole, adminOnly)
	users.GET("/:id", userHandler.GetByID, adminOnly)
	users.PUT("/:id", userHandler.UpdateByAdmin, adminOnly)
	users.GET("/:id/validate-role", userHandler.ValidateRole)

	// --- Observability (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandler())

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
