package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"teamcreate/internal/routers"
	"teamcreate/internal/session"
)

// Swappable seams for tests.
var (
	listenAndServe = func(srv *http.Server) error { return srv.ListenAndServe() }
	exitFunc       = func(err error) { log.Fatal(err) }
	defaultPort    = "8080"
)

func run(ctx context.Context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store := session.NewDefaultStore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go store.RunSweeper(ctx, session.SweepInterval, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	srv := &http.Server{Addr: ":" + port, Handler: routers.New(logger, store)}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigChan:
			logger.Info("shutting down")
			cancel()
			_ = srv.Shutdown(context.Background())
		case <-ctx.Done():
		}
	}()

	logger.Info("teamcreate server listening", zap.String("addr", srv.Addr))
	if err := listenAndServe(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func main() {
	if err := run(context.Background()); err != nil {
		exitFunc(err)
	}
}
