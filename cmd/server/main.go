package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/mmehra/splitledger/internal/auth"
	"github.com/mmehra/splitledger/internal/balance"
	"github.com/mmehra/splitledger/internal/config"
	"github.com/mmehra/splitledger/internal/events"
	"github.com/mmehra/splitledger/internal/ledger"
	"github.com/mmehra/splitledger/internal/membership"
	"github.com/mmehra/splitledger/internal/metrics"
	"github.com/mmehra/splitledger/internal/server"
	"github.com/mmehra/splitledger/internal/service"
	"github.com/mmehra/splitledger/internal/storage/sqlite"
	"github.com/mmehra/splitledger/pkg/logging"
)

func main() {
	logging.Setup()
	cfg := config.FromEnv()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	publisher := events.NewCounterPublisher(store)
	resolver := membership.New(store, store)
	settlementLedger := ledger.New(store, resolver)
	aggregator := balance.New(store)

	jwtManager := auth.NewJWTManager(cfg.JWTSigningKey, cfg.TokenDuration)
	authenticator := auth.NewPasswordAuthenticator(store)

	srv := server.New(
		service.NewAuthService(authenticator, jwtManager, store),
		service.NewGroupService(store, resolver, m),
		service.NewExpenseService(store, settlementLedger, resolver, publisher, m),
		service.NewPaymentService(settlementLedger, publisher, m),
		service.NewBalanceService(store, aggregator),
		jwtManager,
	)

	slog.Info("server starting", "address", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Router()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
