package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/rogerio-castellano/finance-tracker/docs"
	"github.com/rogerio-castellano/finance-tracker/internal/http/handlers"
	mw "github.com/rogerio-castellano/finance-tracker/internal/http/middleware"
	rl "github.com/rogerio-castellano/finance-tracker/internal/http/rate_limiter"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// DefaultAllowedOrigins is the web client's development origin.
var DefaultAllowedOrigins = []string{"http://localhost:5173"}

type Config struct {
	AllowedOrigins []string
	// Limiter throttles /api per client. Nil disables throttling.
	Limiter *rl.Registry
	Logger  *applog.Logger
}

func NewRouter(h *handlers.Handlers, tokens mw.TokenParser, cfg Config) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}
	logger := cfg.Logger
	if logger == nil {
		logger = applog.Nop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(mw.RateLimit(cfg.Limiter))
		}

		r.Get("/health", h.Health)
		r.Post("/auth/register", h.Register)
		r.Post("/auth/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(tokens))

			r.Get("/users/me", h.Me)
			r.Get("/transactions", h.ListTransactions)
			r.Post("/transactions", h.CreateTransaction)
			r.Post("/transactions/import", h.ImportTransactions)
			r.Put("/transactions/{id}", h.UpdateTransaction)
			r.Delete("/transactions/{id}", h.DeleteTransaction)
		})
	})

	return r
}
