package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Vsirotkin/SMS/internal/platform/config"
	"github.com/Vsirotkin/SMS/internal/platform/logger"
	"github.com/Vsirotkin/SMS/internal/platform/messagebroker"
	"github.com/Vsirotkin/SMS/internal/sms_relay/app"
	"github.com/Vsirotkin/SMS/internal/sms_relay/gateway"
	"github.com/Vsirotkin/SMS/internal/sms_relay/repository"
)

const serviceName = "sms_buffer_worker"

func main() {
	if err := run(); err != nil {
		slog.Error("Worker exited with error", "service", serviceName, "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("./configs", "config.defaults")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat).With("service", serviceName)
	appLogger.Info("SMS buffer worker starting...", "storage", cfg.StorageDriver, "item_delay", cfg.BufferItemDelay.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg, appLogger)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	policy, err := app.ParseTemplatePolicy(cfg.TemplatePolicy)
	if err != nil {
		return err
	}
	client := gateway.NewHTTPClient(appLogger, nil, cfg.GatewayTimeout, cfg.GatewayMaxRPS)
	sender := app.NewFailoverSender(store.Configs, client, appLogger)
	composer := app.NewMessageComposer(store.Templates, policy)
	processor := app.NewBufferProcessor(store.Buffer, composer, sender, appLogger, app.ProcessorConfig{
		ItemDelay:       cfg.BufferItemDelay,
		RetryBackoff:    cfg.BufferRetryBackoff,
		MaxRetryBackoff: cfg.BufferMaxRetryBackoff,
	})

	if cfg.NATSUrl != "" {
		natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			return err
		}
		defer natsClient.Close()
		if _, err := app.StartTriggerConsumer(ctx, natsClient, cfg.NATSTriggerSubject, cfg.NATSQueueGroup, processor, appLogger); err != nil {
			return err
		}
	} else {
		appLogger.Warn("APP_NATS_URL not set; passes run only on startup and on the sweep schedule")
	}

	if cfg.BufferSweepSchedule != "" {
		sweeper, err := app.NewSweeper(cfg.BufferSweepSchedule, processor, appLogger)
		if err != nil {
			return err
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	healthServer := health.NewServer()
	grpcServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)

	g, groupCtx := errgroup.WithContext(ctx)

	g.Go(func() error { return processor.Run(groupCtx) })

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.GRPCHealthPort)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen for gRPC health on %s: %w", addr, err)
		}
		appLogger.Info("gRPC health server listening", "addr", addr)
		healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc health server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		return nil
	})

	// Entries left over from a previous run.
	_ = processor.Trigger(ctx)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	appLogger.Info("SMS buffer worker stopped")
	return nil
}
