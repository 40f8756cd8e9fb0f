// movie-service/cmd/movieservice/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpAPI "movie-service/internal/api"
	"movie-service/internal/config"
	"movie-service/internal/domain"
	grpcServer "movie-service/internal/grpc"
	"movie-service/internal/logging"
	"movie-service/internal/store"
)

func serveCmd() *cobra.Command {
	var httpPort, grpcPort, storeURI, logLevel string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC servers",
		Long: `Run the HTTP API and the gRPC lookup service until SIGINT or SIGTERM.
Settings come from the environment (and .env when present); flags override them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.HTTPPort = httpPort
			}
			if cmd.Flags().Changed("grpc-port") {
				cfg.GRPCPort = grpcPort
			}
			if cmd.Flags().Changed("store-uri") {
				cfg.StoreURI = storeURI
				cfg.StoreURIDefaulted = false
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&httpPort, "port", config.DefaultHTTPPort, "HTTP listen port (env PORT)")
	cmd.Flags().StringVar(&grpcPort, "grpc-port", config.DefaultGRPCPort, "gRPC listen port (env GRPC_PORT)")
	cmd.Flags().StringVar(&storeURI, "store-uri", "", "store connection URI (env MONGODB_URI)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (env LOG_LEVEL)")
	return cmd
}

func run(parent context.Context, cfg config.Config) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stdout, level)
	slog.SetDefault(logger)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.StoreURIDefaulted {
		logger.Warn("MONGODB_URI not set, using local default", slog.String("uri", cfg.StoreURI))
	}
	logger.Info("Connecting to movie store", slog.String("uri", config.RedactURI(cfg.StoreURI)))

	connectCtx, cancelConnect := context.WithTimeout(ctx, cfg.ConnectTimeout)
	movieStore, err := store.Open(connectCtx, cfg.StoreURI, logger)
	cancelConnect()
	if err != nil {
		logger.Error("Movie store connection failed", slog.String("error", err.Error()))
		return fmt.Errorf("connect store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := movieStore.Close(closeCtx); err != nil {
			logger.Error("Failed to close movie store", slog.String("error", err.Error()))
		}
	}()
	logger.Info("Movie store ready")

	// gRPC
	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc on %s: %w", cfg.GRPCPort, err)
	}
	grpcSrv, healthSrv := grpcServer.NewGRPCServer(grpcServer.NewServer(movieStore, logger), logger)

	// HTTP
	movieHandler := httpAPI.NewMovieHandler(movieStore, logger, domain.NewValidator(validator.New()))
	httpSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpAPI.NewRouter(movieHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server starting", slog.String("port", cfg.GRPCPort))
		if err := grpcSrv.Serve(grpcLis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("HTTP server starting", slog.String("port", cfg.HTTPPort))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(shutdownCtx)
		if err != nil {
			logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
		}

		stopped := make(chan struct{})
		go func() {
			grpcSrv.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcSrv.Stop()
		}
		logger.Info("Servers stopped")
		return err
	})

	return g.Wait()
}
