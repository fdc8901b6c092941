// Package main initializes and starts the AyurTrace API server,
// setting up configuration, logging, the database, repositories,
// services, handlers, and routing.
package main

import (
	"fmt"

	nethttp "net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/divya01062005/Ayurtrace/internal/chain"
	"github.com/divya01062005/Ayurtrace/internal/config"
	"github.com/divya01062005/Ayurtrace/internal/db"
	"github.com/divya01062005/Ayurtrace/internal/logger"
	"github.com/divya01062005/Ayurtrace/internal/repository"
	"github.com/divya01062005/Ayurtrace/internal/server/handler/http"
	"github.com/divya01062005/Ayurtrace/internal/service"
	"github.com/divya01062005/Ayurtrace/internal/wallet"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Populate the environment from .env when present.
	_ = godotenv.Load()

	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	if err := log.Init("Info"); err != nil {
		panic(err)
	}
	defer func() { _ = log.Log.Sync() }()
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("AYURTRACE_JWT_SECRET is required")
	}

	// Initialize PostgreSQL connection and schema.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Optional read-only chain connection for verification cross-checks.
	var chainClient chain.Client
	if options.RPCURL != "" && options.ContractAddress != "" {
		w, err := serverWallet(options.PrivateKey)
		if err != nil {
			zapLogger.Fatal("cannot load wallet", zap.Error(err))
		}
		chainClient, err = chain.NewClient("ethereum", options, w, zapLogger)
		if err != nil {
			zapLogger.Fatal("cannot init chain client", zap.Error(err))
		}
		defer func() { _ = chainClient.Close() }()
	} else {
		zapLogger.Info("no chain configured, verification uses backend records only")
	}

	// Initialize repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	traceRepo := repository.NewPostgresTraceRepository(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, []byte(options.JWTSecret))
	traceService := service.NewTraceService(traceRepo, authRepo, chainClient, options.APIBaseURL, zapLogger)

	// Create HTTP handlers.
	authHandler := &http.AuthHandler{AuthService: authService}
	traceHandler := &http.TraceHandler{TraceService: traceService}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, traceHandler, authService, zapLogger)

	zapLogger.Info("server listening", zap.String("addr", options.Addr))
	if err := nethttp.ListenAndServe(options.Addr, router); err != nil {
		zapLogger.Fatal("server stopped", zap.Error(err))
	}
}

// serverWallet loads the configured key, or a throwaway one when the
// server only performs read calls.
func serverWallet(hexKey string) (*wallet.LocalWallet, error) {
	if hexKey != "" {
		return wallet.NewLocalWallet(hexKey)
	}
	return wallet.NewRandomWallet()
}

// orDefault returns s, or fallback when s is empty (stand-in for
// cmp.Or, which requires Go 1.22+).
func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
