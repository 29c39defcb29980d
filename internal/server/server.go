// Package server provides the HTTP server and routing for StockPro.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/config"
	"github.com/stockpro/stockpro/internal/database"
	ledgerhandlers "github.com/stockpro/stockpro/internal/modules/ledger/handlers"
	marketdatahandlers "github.com/stockpro/stockpro/internal/modules/marketdata/handlers"
	otphandlers "github.com/stockpro/stockpro/internal/modules/otp/handlers"
	paymentshandlers "github.com/stockpro/stockpro/internal/modules/payments/handlers"
	portfoliohandlers "github.com/stockpro/stockpro/internal/modules/portfolio/handlers"
	tradinghandlers "github.com/stockpro/stockpro/internal/modules/trading/handlers"
	usershandlers "github.com/stockpro/stockpro/internal/modules/users/handlers"
	watchlisthandlers "github.com/stockpro/stockpro/internal/modules/watchlist/handlers"
)

// Handlers bundles the per-module HTTP handlers wired in main.
type Handlers struct {
	Users      *usershandlers.Handler
	OTP        *otphandlers.Handler
	Trading    *tradinghandlers.Handler
	Portfolio  *portfoliohandlers.Handler
	Ledger     *ledgerhandlers.Handler
	MarketData *marketdatahandlers.Handler
	Payments   *paymentshandlers.Handler
	Watchlist  *watchlisthandlers.Handler
}

// Config holds server configuration
type Config struct {
	Log      zerolog.Logger
	Config   *config.Config
	AppDB    *database.DB
	MarketDB *database.DB
	Tokens   *auth.TokenManager
	Handlers Handlers
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	appDB          *database.DB
	marketDB       *database.DB
	tokens         *auth.TokenManager
	handlers       Handlers
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		appDB:          cfg.AppDB,
		marketDB:       cfg.MarketDB,
		tokens:         cfg.Tokens,
		handlers:       cfg.Handlers,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.AppDB, cfg.MarketDB),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public endpoints: signup, login and verification codes
		s.handlers.Users.RegisterPublicRoutes(r)
		s.handlers.OTP.RegisterRoutes(r)

		// Everything else requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.tokens, s.log))

			s.handlers.Users.RegisterRoutes(r)
			s.handlers.Trading.RegisterRoutes(r)
			s.handlers.Portfolio.RegisterRoutes(r)
			s.handlers.Ledger.RegisterRoutes(r)
			s.handlers.MarketData.RegisterRoutes(r)
			s.handlers.Payments.RegisterRoutes(r)
			s.handlers.Watchlist.RegisterRoutes(r)

			r.Get("/system/status", s.systemHandlers.HandleStatus)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
