package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/telhawk-systems/logrelay/internal/config"
	"github.com/telhawk-systems/logrelay/internal/handlers"
	"github.com/telhawk-systems/logrelay/internal/logging"
	"github.com/telhawk-systems/logrelay/internal/ratelimit"
	"github.com/telhawk-systems/logrelay/internal/server"
	"github.com/telhawk-systems/logrelay/internal/service"
	"github.com/telhawk-systems/logrelay/internal/sink"
	"github.com/telhawk-systems/logrelay/internal/tokens"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("logrelay"))
	logging.SetDefault(logger)

	slog.Info("Starting LogRelay service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}
	slog.Info("Collaborators configured",
		slog.String("token_url", cfg.Token.URL),
		slog.String("sink_project", cfg.Sink.Project),
		slog.String("sink_dataset", cfg.Sink.Dataset),
		slog.String("sink_table", cfg.Sink.Table),
		slog.Bool("signature_auth", cfg.Auth.SharedSecret != ""),
	)

	// Load the service credential. A missing or broken credential is not
	// fatal at startup: it surfaces as an upstream failure per request so a
	// rotated secret can be fixed without the relay crash-looping.
	cred, err := loadCredential(cfg)
	if err != nil {
		log.Printf("WARNING: Failed to load service credential: %v", err)
		log.Println("Events will be rejected with 502 until the credential is fixed")
		cred = &tokens.Credential{}
	}

	// Initialize rate limiter
	var rateLimiter ratelimit.RateLimiter
	if cfg.Redis.Enabled && cfg.Ingestion.RateLimitEnabled {
		log.Printf("Initializing Redis rate limiter: %s", cfg.Redis.URL)
		limiter, err := ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL,
			cfg.Ingestion.RateLimitRequests,
			cfg.Ingestion.RateLimitWindow,
		)
		if err != nil {
			log.Printf("WARNING: Failed to initialize Redis rate limiter: %v", err)
			log.Println("Continuing without rate limiting")
			rateLimiter = &ratelimit.NoOpRateLimiter{}
		} else {
			rateLimiter = limiter
			log.Printf("Rate limiting enabled: %d requests per %s", cfg.Ingestion.RateLimitRequests, cfg.Ingestion.RateLimitWindow)
		}
	} else {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
		log.Println("Rate limiting disabled")
	}
	defer rateLimiter.Close()

	// Initialize the credential broker with a cached token source
	broker := tokens.NewBroker(cred, cfg.Token.URL, cfg.Token.Scope, cfg.Token.Timeout)
	tokenSource := tokens.NewCachedSource(broker, cfg.Token.RefreshSkew)

	// Initialize the warehouse sink client
	sinkClient := sink.NewClient(sink.Config{
		BaseURL: cfg.Sink.BaseURL,
		Project: cfg.Sink.Project,
		Dataset: cfg.Sink.Dataset,
		Table:   cfg.Sink.Table,
	}, cfg.Sink.Timeout)

	// Initialize relay service and HTTP handlers
	relayService := service.NewRelayService(tokenSource, sinkClient)
	handler := handlers.NewEventHandler(relayService, cfg.Auth.SharedSecret, rateLimiter, logger, cfg.Ingestion.MaxEventSize)
	router := server.NewRouter(handler)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("LogRelay service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// loadCredential resolves the service credential from either a structured
// JSON secret or the discrete email/private-key config values.
func loadCredential(cfg *config.Config) (*tokens.Credential, error) {
	if cfg.Credential.File != "" {
		data, err := os.ReadFile(cfg.Credential.File)
		if err != nil {
			return nil, fmt.Errorf("read credential file: %w", err)
		}
		return tokens.ParseCredential(data)
	}

	pem := cfg.Credential.PrivateKey
	if pem == "" && cfg.Credential.PrivateKeyFile != "" {
		data, err := os.ReadFile(cfg.Credential.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read private key file: %w", err)
		}
		pem = string(data)
	}

	return &tokens.Credential{
		Email:      cfg.Credential.Email,
		PrivateKey: pem,
	}, nil
}
