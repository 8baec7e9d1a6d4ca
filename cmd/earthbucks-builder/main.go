// Command earthbucks-builder runs the block builder: it synchronizes
// with storage, validates announced headers and blocks, and publishes
// candidate headers for miners until terminated by a signal.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/earthbucks/earthbucks-go/internal/builder"
	"github.com/earthbucks/earthbucks-go/internal/metrics"
	"github.com/earthbucks/earthbucks-go/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := builder.NewConfig(
		os.Getenv("DOMAIN"),
		os.Getenv("DOMAIN_PRIV_KEY"),
		os.Getenv("COINBASE_PKH"),
		os.Getenv("ADMIN_PUB_KEY"),
		os.Getenv("DATABASE_URL"),
	)
	if err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		os.Exit(1)
	}

	st, err := store.NewBoltStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loop := builder.NewLoop(cfg, st, builder.SystemClock, logger)
	if err := loop.Run(ctx); err != nil {
		logger.Error("builder failed", zap.Error(err))
		os.Exit(1)
	}
}
