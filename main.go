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

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/andrewpaige1/formcraft-api/auth"
	"github.com/andrewpaige1/formcraft-api/config"
	"github.com/andrewpaige1/formcraft-api/generator"
	"github.com/andrewpaige1/formcraft-api/handlers"
	"github.com/andrewpaige1/formcraft-api/logger"
	"github.com/andrewpaige1/formcraft-api/middleware"
	"github.com/andrewpaige1/formcraft-api/upload"
)

func init() {
	// Load .env file if not in production environment
	if os.Getenv("RAILWAY_ENVIRONMENT_NAME") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("Warning: .env file not found, environment variables might not be loaded: %v", err)
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	appLog, err := logger.New(cfg.Env.LoggerMode())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.Connect(cfg.DatabaseURL, appLog)
	if err != nil {
		appLog.Fatal("Failed to connect to database", "error", err)
	}

	guard, err := auth.NewGuard(auth.Options{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TTL,
	})
	if err != nil {
		appLog.Fatal("Failed to set up token guard", "error", err)
	}

	var model generator.TextModel
	gemini, err := generator.NewGeminiModel(ctx, generator.GeminiOptions{
		APIKey:   cfg.Gemini.APIKey,
		Model:    cfg.Gemini.Model,
		Endpoint: cfg.Gemini.Endpoint,
	})
	if err != nil {
		appLog.Warn("Gemini is not configured, form generation is disabled", "error", err)
		model = generator.Unconfigured{Reason: err.Error()}
	} else {
		model = gemini
	}

	relay, err := upload.New(ctx, cfg.Media, appLog)
	if err != nil {
		appLog.Fatal("Failed to set up upload relay", "error", err)
	}
	if closer, ok := relay.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	h := handlers.NewDBHandler(db, generator.New(model, appLog), relay, guard, appLog, handlers.UploadOptions{
		Folder:         cfg.Media.Folder,
		Concurrency:    cfg.Media.Concurrency,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})

	anyOrigin := len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*"
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin", middleware.RequestIDHeader},
		AllowCredentials: !anyOrigin,
		MaxAge:           86400,
	}).Handler(middleware.RequestLogger(appLog, middleware.Recover(appLog, h.Routes())))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           corsHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("Server listening", "addr", srv.Addr, "env", cfg.Env.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	appLog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Graceful shutdown failed", "error", err)
	}
}
