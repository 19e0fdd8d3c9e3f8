// Command bookmarkhubd runs the bookmark capture service: an HTTP ingestion
// endpoint that persists bookmark events and fans out notifications to the
// configured messaging clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kart-io/bookmarkhub/observability"
	"github.com/kart-io/bookmarkhub/pkg/config"
	"github.com/kart-io/bookmarkhub/pkg/logger"
	"github.com/kart-io/bookmarkhub/pkg/messaging"
	"github.com/kart-io/bookmarkhub/pkg/sink"
	httptransport "github.com/kart-io/bookmarkhub/transport/http"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to config yaml")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	log := logger.NewZerolog(os.Stdout, logger.ParseLevel(cfg.Log.Level, logger.Info), cfg.Log.JSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tel, err := observability.NewTelemetryProvider(&cfg.Telemetry)
	if err != nil {
		log.Warn("telemetry init failed, continuing without exporters", "error", err)
		tel, _ = observability.NewTelemetryProvider(nil)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(flushCtx); err != nil {
			log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	store, err := sink.New(cfg.Sink, log)
	if err != nil {
		return fmt.Errorf("init sink: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("sink close failed", "error", err)
		}
	}()

	registry := messaging.BuildRegistry(log, cfg.Messaging.Builders(log)...)
	dispatcher := messaging.NewDispatcher(registry, cfg.Messaging.CategoryRouting, log, tel)

	handlers := httptransport.NewHandlers(store, dispatcher, tel, log)
	router := httptransport.NewRouter(handlers, log)
	srv := httptransport.NewServer(httptransport.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, router, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("bookmarkhub started",
		"addr", srv.Addr(),
		"sink", cfg.Sink.Backend,
		"clients", registry.Names())

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
