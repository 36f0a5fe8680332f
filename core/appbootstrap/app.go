package appbootstrap

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cybermap/api"
	"cybermap/config"
	"cybermap/core/utils"
)

const shutdownTimeout = 10 * time.Second

// Run wires the whole service together and blocks until a shutdown signal.
func Run() {
	configPath := flag.String("config", "", "path to YAML config (optional; env vars apply otherwise)")
	flag.Parse()

	logger := utils.NewLogger()
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Errorf("config: %v", err)
		os.Exit(1)
	}

	comp, err := composeRuntime(cfg, logger)
	if err != nil {
		logger.Errorf("bootstrap: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comp.poller.StartWithContext(ctx)
	if comp.subscriber != nil {
		if err := comp.subscriber.StartWithContext(ctx); err != nil {
			logger.Errorf("feed: nats subscribe: %v", err)
			os.Exit(1)
		}
	}

	server := api.NewServer(cfg, comp.serverDeps, logger)
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Errorf("api: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("api: shutdown: %v", err)
	}
	if err := comp.poller.StopWithContext(shutdownCtx); err != nil {
		logger.Errorf("feed: stop: %v", err)
	}
	if comp.natsConn != nil {
		comp.natsConn.Close()
	}
}
