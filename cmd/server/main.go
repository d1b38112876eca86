package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpcapi "freighthub-backend/internal/api/grpc"
	httpapi "freighthub-backend/internal/api/http"
	"freighthub-backend/internal/config"
	"freighthub-backend/internal/logger"
	"freighthub-backend/internal/metrics"
	"freighthub-backend/internal/security"
	"freighthub-backend/internal/service"
	"freighthub-backend/internal/storage"
)

const healthCheckInterval = 15 * time.Second

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting FreightHub backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logger.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped. Goodbye!")
}

// run serves until ctx is canceled or a listener fails. Every resource it
// opens is released before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	// Initialize storage
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open storage (driver %s): %w", cfg.Database.Driver, err)
	}
	defer backend.Close()

	m := metrics.New()
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.AccessTokenTTL())

	// Initialize delivery channels
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	var pushSvc service.PushService = service.NoopPushService{}
	if cfg.Firebase.Enabled {
		pushSvc, err = service.NewPushService(ctx, cfg.Firebase.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to initialize push notifications: %w", err)
		}
	}
	notifier := service.NewNotifier(backend.Notifications, backend.Users, emailSvc, pushSvc, m)

	// Initialize Services
	services := &httpapi.Services{
		QuoteRequests:  service.NewQuoteRequestService(backend.Requests, backend.Responses, backend.Users, m),
		QuoteResponses: service.NewQuoteResponseService(backend.Requests, backend.Responses, backend.Users, notifier, m),
		Communities:    service.NewCommunityService(backend.Communities, notifier, m),
		Users:          service.NewUserService(backend.Users),
		Notifications:  service.NewNotificationService(backend.Notifications),
	}

	httpLis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.GetServerAddress(), err)
	}
	httpServer := &http.Server{
		Handler:           httpapi.NewRouter(httpapi.NewHandler(services, backend, m), tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcLis net.Listener
	if addr := cfg.GetGRPCAddress(); addr != "" {
		grpcLis, err = net.Listen("tcp", addr)
		if err != nil {
			httpLis.Close()
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "address", httpLis.Addr().String())
		if err := httpServer.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if grpcLis != nil {
		grpcServer := grpcapi.NewServer(tokenManager, backend)
		g.Go(func() error {
			logger.Info("gRPC health server listening", "address", grpcLis.Addr().String())
			if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			grpcServer.WatchDatabase(gctx, healthCheckInterval)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			grpcServer.GracefulStop()
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
