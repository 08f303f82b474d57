package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"google.golang.org/grpc"

	grpcapi "dfd-gps-service/app/src/api/grpc"
	httpapi "dfd-gps-service/app/src/api/http"
	"dfd-gps-service/app/src/infra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := initApplication(os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise application: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := run(ctx, app); err != nil {
		app.Logger.Errorf(ctx, "server error: %v", err)
		cleanup()
		os.Exit(1)
	}
}

// run serves HTTP, optional gRPC and optional metrics until ctx is cancelled
// or a listener fails, then shuts everything down within the configured timeout.
func run(ctx context.Context, app *application) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	cfg := app.Config
	logger := app.Logger

	infra.LogConfig(ctx, logger, cfg)
	metricsServer := infra.StartMetricsServer(logger, cfg.MetricsPort)
	if metricsServer != nil {
		logger.Printf(ctx, "metrics server listening on %s", metricsServer.Addr)
	}

	httpServer := newHTTPServer(cfg.HTTPPort, httpapi.NewServer(app.Service, logger, app.HTTPOptions))
	httpListener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP port %s: %w", cfg.HTTPPort, err)
	}

	var (
		grpcServer   *grpc.Server
		grpcListener net.Listener
	)
	if cfg.GRPCPort != "" {
		grpcServer = grpcapi.NewServer(app.Service, logger)
		grpcListener, err = net.Listen("tcp", net.JoinHostPort("", cfg.GRPCPort))
		if err != nil {
			_ = httpListener.Close()
			return fmt.Errorf("listen on gRPC port %s: %w", cfg.GRPCPort, err)
		}
	}

	serverErrs := make(chan error, 2)
	var serverGroup sync.WaitGroup

	serverGroup.Add(1)
	go func() {
		defer serverGroup.Done()
		logger.Printf(ctx, "HTTP server listening on %s", httpListener.Addr())
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrs <- fmt.Errorf("http server: %w", err)
		}
	}()

	if grpcServer != nil {
		serverGroup.Add(1)
		go func() {
			defer serverGroup.Done()
			logger.Printf(ctx, "gRPC server listening on %s", grpcListener.Addr())
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serverErrs <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serverErrs:
	}
	stop()

	shutdown(app, httpServer, grpcServer, metricsServer)
	serverGroup.Wait()

	logger.Println(ctx, "server stopped")
	return serveErr
}

func shutdown(app *application, httpServer *http.Server, grpcServer *grpc.Server, metricsServer *http.Server) {
	logger := app.Logger
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout())
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf(shutdownCtx, "HTTP server shutdown error: %v", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf(shutdownCtx, "metrics server shutdown error: %v", err)
		}
	}
	if grpcServer == nil {
		return
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		logger.Println(shutdownCtx, "gRPC graceful stop timed out, forcing")
		grpcServer.Stop()
	}
}

func newHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
