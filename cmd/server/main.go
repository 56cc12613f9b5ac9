package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/juliog922/chatlink-v2/internal/dockerlogs"
	"github.com/juliog922/chatlink-v2/internal/http/handlers"
	"github.com/juliog922/chatlink-v2/internal/repo/postgres"
	"github.com/juliog922/chatlink-v2/internal/service"
	"github.com/juliog922/chatlink-v2/internal/wabot"
	"github.com/juliog922/chatlink-v2/pkg/config"
	"github.com/juliog922/chatlink-v2/pkg/database"
	"github.com/juliog922/chatlink-v2/pkg/events"
	"github.com/juliog922/chatlink-v2/pkg/logger"
	mw "github.com/juliog922/chatlink-v2/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger.Info("starting server bootstrap")

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to configure database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitReady(ctx, pool, 20) {
		logger.Warn("Proceeding without DB confirmed ready; will attempt table creation anyway")
	}
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}

	// Optional Redis for login rate limiting
	var cache *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Warn("Invalid REDIS_URL; login rate limiting disabled", "error", err)
		} else {
			cache = redis.NewClient(opt)
			defer cache.Close()
		}
	}

	// Optional NATS for audit events
	var eventBus events.Publisher = events.Noop{}
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSPublisher(cfg.NATS.URL)
		if err != nil {
			logger.Warn("Failed to connect to NATS; audit events disabled", "error", err)
		} else {
			eventBus = bus
			defer bus.Close()
		}
	}

	// Container runtime
	runtime, err := dockerlogs.NewDockerRuntime()
	if err != nil {
		logger.Error("Failed to create docker client", "error", err)
		os.Exit(1)
	}

	// Collaborator clients
	botClient := wabot.NewClient(cfg.Bot.BaseURL, &http.Client{Timeout: cfg.Bot.Timeout})

	// Repositories and services
	userRepo := postgres.NewUserRepository(pool)
	userService := service.NewUserService(userRepo, botClient, eventBus)

	// Handlers
	h := handlers.New(
		userService,
		botClient,
		dockerlogs.NewDirectory(runtime),
		dockerlogs.NewFilter(runtime),
		cfg,
	)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("chatlink"))
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Auth"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	// Public: frontend and login
	r.Get("/", h.StaticPage("index.html"))
	r.Get("/index.html", h.StaticPage("index.html"))
	r.Get("/users", h.StaticPage("users.html"))
	r.Get("/logs", h.StaticPage("logs.html"))
	r.Get("/styles/*", h.StaticFile)
	r.Get("/scripts/*", h.StaticFile)
	r.Get("/images/*", h.StaticFile)

	r.With(mw.LoginRateLimit(cache, cfg.Auth.LoginRateLimit)).
		Post("/api/login", h.Login)

	// Protected API behind the shared-secret header
	r.Group(func(r chi.Router) {
		r.Use(mw.Auth(cfg.Auth.Token))

		r.Get("/api/users", h.ListUsers)
		r.Post("/api/users", h.CreateUser)
		r.Delete("/api/users/{id}", h.DeleteUser)

		// The served frontend calls /wabot/loginqr; /api/wabot/loginqr
		// is kept as an alias for API consumers.
		r.Post("/wabot/loginqr", h.WabotLoginQR)
		r.Post("/api/wabot/loginqr", h.WabotLoginQR)

		r.Get("/api/dlogs/services", h.LogServices)
		r.Get("/api/dlogs/view", h.LogView)
	})

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
