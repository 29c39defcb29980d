// Package main is the entry point for the StockPro trading backend. It
// wires configuration, databases, services and HTTP handlers, starts the
// market data scheduler and serves the API until a shutdown signal.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/stockpro/stockpro/internal/auth"
	"github.com/stockpro/stockpro/internal/config"
	"github.com/stockpro/stockpro/internal/database"
	"github.com/stockpro/stockpro/internal/modules/ledger"
	ledgerhandlers "github.com/stockpro/stockpro/internal/modules/ledger/handlers"
	"github.com/stockpro/stockpro/internal/modules/marketdata"
	marketdatahandlers "github.com/stockpro/stockpro/internal/modules/marketdata/handlers"
	"github.com/stockpro/stockpro/internal/modules/otp"
	otphandlers "github.com/stockpro/stockpro/internal/modules/otp/handlers"
	"github.com/stockpro/stockpro/internal/modules/payments"
	paymentshandlers "github.com/stockpro/stockpro/internal/modules/payments/handlers"
	"github.com/stockpro/stockpro/internal/modules/portfolio"
	portfoliohandlers "github.com/stockpro/stockpro/internal/modules/portfolio/handlers"
	"github.com/stockpro/stockpro/internal/modules/trading"
	tradinghandlers "github.com/stockpro/stockpro/internal/modules/trading/handlers"
	"github.com/stockpro/stockpro/internal/modules/users"
	usershandlers "github.com/stockpro/stockpro/internal/modules/users/handlers"
	"github.com/stockpro/stockpro/internal/modules/watchlist"
	watchlisthandlers "github.com/stockpro/stockpro/internal/modules/watchlist/handlers"
	"github.com/stockpro/stockpro/internal/scheduler"
	"github.com/stockpro/stockpro/internal/server"
	"github.com/stockpro/stockpro/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting StockPro")

	// App database holds users, positions, trades and money movements, so
	// it runs with the ledger durability profile.
	appDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "app.db"),
		Profile: database.ProfileLedger,
		Name:    "app",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open app database")
	}
	defer appDB.Close()

	marketDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "market.db"),
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market database")
	}
	defer marketDB.Close()

	for _, db := range []*database.DB{appDB, marketDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to apply schema")
		}
	}

	// Repositories
	userRepo := users.NewRepository(appDB.Conn(), log)
	positionRepo := portfolio.NewPositionRepository(appDB.Conn(), log)
	tradeRepo := trading.NewTradeRepository(appDB.Conn(), log)
	ledgerRepo := ledger.NewRepository(appDB.Conn(), log)
	cardRepo := payments.NewCardRepository(appDB.Conn(), log)
	watchlistRepo := watchlist.NewRepository(appDB.Conn(), log)
	marketRepo := marketdata.NewRepository(marketDB.Conn(), log)

	// External clients
	googleVerifier := auth.NewGoogleVerifier(cfg.GoogleClientID)
	marketClient := marketdata.NewClient(cfg.MarketDataBaseURL, cfg.MarketDataAPIKey, log)
	smsClient := otp.NewSMSClient(cfg.SMSBaseURL, cfg.SMSAPIKey, log)
	emailSender := otp.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailSender, log)

	// Services
	marketService := marketdata.NewService(marketRepo, marketClient, cfg.Symbols, log)
	userService := users.NewService(userRepo, googleVerifier, log)
	ledgerService := ledger.NewService(appDB.Conn(), ledgerRepo, log)
	portfolioService := portfolio.NewService(positionRepo, marketService, log)
	tradingService := trading.NewService(appDB.Conn(), tradeRepo, positionRepo, ledgerService, ledgerRepo, marketService, log)
	paymentService := payments.NewService(cardRepo, ledgerService, log)
	watchlistService := watchlist.NewService(watchlistRepo, marketService, log)

	otpStore := otp.NewStore()
	otpService := otp.NewService(otpStore, smsClient, emailSender, userRepo, log)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)

	srv := server.New(server.Config{
		Log:      log,
		Config:   cfg,
		AppDB:    appDB,
		MarketDB: marketDB,
		Tokens:   tokens,
		Handlers: server.Handlers{
			Users:      usershandlers.NewHandler(userService, tokens, log),
			OTP:        otphandlers.NewHandler(otpService, log),
			Trading:    tradinghandlers.NewHandler(tradingService, log),
			Portfolio:  portfoliohandlers.NewHandler(portfolioService, log),
			Ledger:     ledgerhandlers.NewHandler(ledgerService, log),
			MarketData: marketdatahandlers.NewHandler(marketService, log),
			Payments:   paymentshandlers.NewHandler(paymentService, log),
			Watchlist:  watchlisthandlers.NewHandler(watchlistService, log),
		},
	})

	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.IngestSchedule, scheduler.NewIngestJob(marketService)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register ingestion job")
	}
	if err := sched.AddJob("@every 10m", scheduler.NewSweepJob(otpStore)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register OTP sweep job")
	}
	sched.Start()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
