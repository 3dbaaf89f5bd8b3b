package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecohistorias/eco-api/internal/codinome"
	"github.com/ecohistorias/eco-api/internal/config"
	"github.com/ecohistorias/eco-api/internal/constants"
	"github.com/ecohistorias/eco-api/internal/credentials"
	"github.com/ecohistorias/eco-api/internal/database"
	"github.com/ecohistorias/eco-api/internal/handlers"
	"github.com/ecohistorias/eco-api/internal/mail"
	"github.com/ecohistorias/eco-api/internal/metrics"
	"github.com/ecohistorias/eco-api/internal/ratelimit"
	"github.com/ecohistorias/eco-api/internal/repository"
	"github.com/ecohistorias/eco-api/internal/services"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs bearer tokens and rate limits
	rdb, err := credentials.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // username (empty for default user)
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(constants.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Mail falls back to the log when SMTP is not configured
	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTPEnabled() {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.SMTPFrom,
		})
	}

	generator, err := codinome.New()
	if err != nil {
		log.Fatalf("Failed to load codinome vocabulary: %v", err)
	}

	// Repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ecoRepo := repository.NewEcoRepository(db)
	sussurroRepo := repository.NewSussurroRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	resetService := services.NewPasswordResetService(userRepo, resetRepo, mailer, cfg.FrontendURL, cfg.ResetTokenTTL)
	tokens := credentials.NewRedisTokenStore(rdb, constants.BearerTokenTTL)
	m := metrics.New()

	handlers.RegisterRoutes(r, handlers.Routes{
		Auth:     handlers.NewAuthHandler(services.NewAuthService(userRepo), tokens, m),
		Eco:      handlers.NewEcoHandler(services.NewEcoService(ecoRepo, tagRepo, sussurroRepo), m),
		Sussurro: handlers.NewSussurroHandler(services.NewSussurroService(sussurroRepo, ecoRepo), m),
		Tag:      handlers.NewTagHandler(services.NewTagService(tagRepo)),
		Password: handlers.NewPasswordHandler(resetService, m),
		Codinome: handlers.NewCodinomeHandler(generator, codinome.DefaultMaxRetries, m),
		Health:   handlers.NewHealthHandler(rdb),

		Tokens:        tokens,
		Metrics:       m,
		GlobalLimiter: ratelimit.NewRedisLimiter(rdb, "global", cfg.RateLimitRequests, cfg.RateLimitWindow),
		ForgotLimiter: ratelimit.NewRedisLimiter(rdb, "forgot_password", constants.ResetRequestLimit, constants.ResetRequestWindow),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	resetService.Wait()
	log.Println("Server exited")
}
