package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/Vsirotkin/SMS/internal/platform/config"
	"github.com/Vsirotkin/SMS/internal/platform/logger"
	"github.com/Vsirotkin/SMS/internal/platform/messagebroker"
	"github.com/Vsirotkin/SMS/internal/sms_relay/app"
	"github.com/Vsirotkin/SMS/internal/sms_relay/domain"
	"github.com/Vsirotkin/SMS/internal/sms_relay/gateway"
	"github.com/Vsirotkin/SMS/internal/sms_relay/repository"
	httptransport "github.com/Vsirotkin/SMS/internal/sms_relay/transport/http"
)

const (
	serviceName     = "sms_relay_service"
	shutdownTimeout = 30 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Service exited with error", "service", serviceName, "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("./configs", "config.defaults")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	appLogger.Info("SMS relay service starting...", "port", cfg.HTTPPort, "storage", cfg.StorageDriver, "trigger", cfg.BufferTrigger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	if cfg.SeedTemplateTexts {
		if _, err := app.SeedTemplateTexts(ctx, store.Templates, domain.DefaultTemplateTexts, appLogger); err != nil {
			return err
		}
	}

	g, groupCtx := errgroup.WithContext(ctx)

	var trigger app.PassTrigger
	switch cfg.BufferTrigger {
	case config.BufferTriggerNATS:
		natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			return err
		}
		defer natsClient.Close()
		trigger = app.NewNatsPassTrigger(natsClient, cfg.NATSTriggerSubject, serviceName)
		appLogger.Info("Processing passes delegated to buffer workers", "subject", cfg.NATSTriggerSubject)

	default:
		processor, err := newProcessor(cfg, store, appLogger)
		if err != nil {
			return err
		}
		trigger = processor
		g.Go(func() error { return processor.Run(groupCtx) })

		if cfg.BufferSweepSchedule != "" {
			sweeper, err := app.NewSweeper(cfg.BufferSweepSchedule, processor, appLogger)
			if err != nil {
				return err
			}
			sweeper.Start()
			defer sweeper.Stop()
		}
		// Entries left over from a previous run.
		_ = processor.Trigger(ctx)
	}

	relayService := app.NewRelayAppService(store.Buffer, store.Configs, store.Templates, trigger, appLogger)
	handler := httptransport.NewRelayHandler(relayService, appLogger, validator.New())

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httptransport.NewRouter(handler, serviceName, appLogger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		appLogger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	appLogger.Info("SMS relay service stopped")
	return nil
}

func newProcessor(cfg *config.Config, store *repository.Store, logger *slog.Logger) (*app.BufferProcessor, error) {
	policy, err := app.ParseTemplatePolicy(cfg.TemplatePolicy)
	if err != nil {
		return nil, err
	}
	client := gateway.NewHTTPClient(logger, nil, cfg.GatewayTimeout, cfg.GatewayMaxRPS)
	sender := app.NewFailoverSender(store.Configs, client, logger)
	composer := app.NewMessageComposer(store.Templates, policy)
	return app.NewBufferProcessor(store.Buffer, composer, sender, logger, app.ProcessorConfig{
		ItemDelay:       cfg.BufferItemDelay,
		RetryBackoff:    cfg.BufferRetryBackoff,
		MaxRetryBackoff: cfg.BufferMaxRetryBackoff,
	}), nil
}
