package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/db"
	"github.com/xbtlex/solana-casino/internal/chain"
	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/event"
	"github.com/xbtlex/solana-casino/internal/http-server/handlers/jackpot"
	"github.com/xbtlex/solana-casino/internal/http-server/handlers/mysql"
	"github.com/xbtlex/solana-casino/internal/http-server/handlers/payout"
	place_wager "github.com/xbtlex/solana-casino/internal/http-server/handlers/wager/place"
	wager_status "github.com/xbtlex/solana-casino/internal/http-server/handlers/wager/status"
	"github.com/xbtlex/solana-casino/internal/http-server/middleware/logger"
	"github.com/xbtlex/solana-casino/internal/lib/logger/handler/slogpretty"
	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
	"github.com/xbtlex/solana-casino/internal/metrics"
	"github.com/xbtlex/solana-casino/internal/repository"
	"github.com/xbtlex/solana-casino/internal/settle"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting settlement engine...", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	storage, err := sql.Open("mysql", cfg.StorageDSN)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = storage.Ping(); err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = db.Migrate(storage); err != nil {
		log.Error("Failed to run migrations", sl.Err(err))
		os.Exit(1)
	}

	handler := mysql.New(storage)

	wagerRepo := repository.NewWagerRepository(*handler)
	payoutRepo := repository.NewPayoutLedgerRepository(*handler)
	jackpotRepo := repository.NewJackpotRepository(*handler)
	proofRepo := repository.NewFairnessProofRepository(*handler)
	custodyRepo := repository.NewCustodyRepository(*handler)

	rpc := chain.NewRPCClient(cfg.RPCEndpoints, log)

	transport, err := setupPayoutTransport(cfg, log, rpc)
	if err != nil {
		log.Error("Failed to init payout transport", sl.Err(err))
		os.Exit(1)
	}

	publisher, cleanup, err := setupPublisher(cfg, log)
	if err != nil {
		log.Error("Failed to init event publisher", sl.Err(err))
		os.Exit(1)
	}
	defer cleanup()

	m := metrics.New(prometheus.DefaultRegisterer)

	coordinator := settle.NewCoordinator(log, cfg.Settlement,
		wagerRepo, payoutRepo, jackpotRepo, proofRepo, custodyRepo,
		rpc, rpc, transport, cfg.HouseAddress, publisher, m)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Pick up wagers that were mid-settlement when the last process stopped.
	if err = coordinator.Resume(ctx); err != nil {
		log.Error("Failed to resume unsettled wagers", sl.Err(err))
	}

	placeWager := place_wager.NewPlace(log, coordinator)
	wagerStatus := wager_status.NewStatus(log, coordinator, proofRepo)
	payoutOps := payout.NewPayout(log, coordinator)
	jackpotPool := jackpot.NewJackpot(log, jackpotRepo)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Post("/wager", placeWager.New())
	router.Get("/wager/{uuid}", wagerStatus.New())
	router.Get("/jackpot/{game}", jackpotPool.New())
	router.Post("/payout/{uuid}", payoutOps.Settle())
	router.Get("/payouts/pending", payoutOps.Pending())
	router.Post("/payouts/{uuid}/retry", payoutOps.Retry())
	router.Handle("/metrics", promhttp.Handler())

	log.Info("Server started", slog.String("address", cfg.Address))

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", sl.Err(err))

			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", sl.Err(err))
	}

	// In-flight settlements finish; anything left resumes on next start.
	if err = coordinator.Shutdown(shutdownCtx); err != nil {
		log.Error("Settlement shutdown timed out", sl.Err(err))
	}

	log.Info("Server stopped")
}

func setupPayoutTransport(cfg *config.Config, log *slog.Logger, rpc *chain.RPCClient) (chain.PayoutTransport, error) {
	switch cfg.PayoutTransport {
	case "remote":
		return chain.NewRemoteAPITransport(cfg.RemotePayoutURL), nil
	default:
		transport, err := chain.NewLocalSignerTransport(cfg.HouseKeyPath, cfg.HouseAddress, rpc)
		if err != nil {
			return nil, err
		}

		if transport.Address() != cfg.HouseAddress {
			log.Warn("house keypair does not match configured address",
				slog.String("derived", transport.Address()),
				slog.String("configured", cfg.HouseAddress))
		}

		return transport, nil
	}
}

func setupPublisher(cfg *config.Config, log *slog.Logger) (event.Publisher, func(), error) {
	if cfg.EventMode == "pusher" {
		client := &pusher.Client{
			AppID:   cfg.PusherAppID,
			Key:     cfg.PusherKey,
			Secret:  cfg.PusherSecret,
			Cluster: cfg.PusherCluster,
		}

		return event.NewPusherPublisher(log, client), func() {}, nil
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.EventHubURL, nil)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := conn.Close(); err != nil {
			log.Error("failed to close hub connection", sl.Err(err))
		}
	}

	return event.NewHubPublisher(log, conn), cleanup, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlogLogger()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlogLogger() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
