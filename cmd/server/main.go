package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/tinchoocaltana1/becacnc/internal/config"
	"github.com/tinchoocaltana1/becacnc/internal/handlers"
	"github.com/tinchoocaltana1/becacnc/internal/services"
	"github.com/tinchoocaltana1/becacnc/internal/store"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// TextHandler for console readability
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Init DB
	db, err := store.NewStore(cfg.DBDriver, cfg.DBDSN, cfg.DBTimeout)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err, "driver", cfg.DBDriver)
		os.Exit(1)
	}
	defer db.Close()

	// Run Migrations
	if err := db.Migrate(ctx); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 3. Services
	authService := services.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	api := &handlers.APIHandler{
		Orders:   services.NewOrderService(db),
		Products: services.NewProductService(db),
		Stats:    services.NewStatsService(db, cfg.StatsLocation),
		Auth:     authService,
	}

	// 4. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 5. Init Templates
	templates := handlers.NewTemplateCache()
	handlers.RegisterSiteFuncs(templates)
	if err := templates.Load(os.DirFS("."), "templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}
	home := &handlers.HomeHandler{
		Templates:    templates,
		SessionStore: sessionStore,
	}

	// 6. Routes
	apiMux := http.NewServeMux()
	api.Register(apiMux, handlers.NewRateLimiter(ctx, time.Minute, cfg.LoginBurst))

	siteMux := http.NewServeMux()
	fileServer := http.FileServer(http.Dir("./static"))
	siteMux.Handle("GET /static/", http.StripPrefix("/static", fileServer))
	siteMux.HandleFunc("GET /{$}", home.Index)
	siteMux.HandleFunc("POST /contact", handlers.NewRateLimiter(ctx, cfg.ContactRate, 1).Middleware(home.Contact))

	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// The API authenticates with bearer tokens, so only the site is CSRF protected.
	root := http.NewServeMux()
	root.Handle("/api/", handlers.CORSMiddleware(cfg.CORSOrigin, apiMux))
	root.Handle("/healthz", apiMux)
	root.Handle("/", CSRF(siteMux))

	// Chain: Logger -> Security Headers -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(root),
	)

	// 7. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "driver", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-ctx.Done()

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
