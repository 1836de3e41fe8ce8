package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/metrics"
	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/pricerd"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/config"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
)

func main() {
	var (
		configPath string
		grpcAddr   string
		httpAddr   string
		logLevel   string
		warmup     bool
	)

	flag.StringVar(&configPath, "config", "", "optional YAML config file")
	flag.StringVar(&grpcAddr, "grpc-addr", config.DefaultGRPCAddr, "gRPC listen address")
	flag.StringVar(&httpAddr, "http-addr", config.DefaultHTTPAddr, "HTTP listen address")
	flag.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flag.BoolVar(&warmup, "warmup", false, "price the config file's pricing job once at startup")
	flag.Parse()

	logFormat := "text"
	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded

		// explicit flags win over the file
		set := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["grpc-addr"] {
			grpcAddr = cfg.Server.GRPCAddr
		}
		if !set["http-addr"] {
			httpAddr = cfg.Server.HTTPAddr
		}
		if !set["log-level"] {
			logLevel = cfg.LogLevel
		}
		logFormat = cfg.LogFormat
	}
	logger.SetDefault(newLogger(logFormat, logLevel, os.Stdout))

	if warmup && cfg == nil {
		logger.Error("-warmup needs -config")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := pricerd.NewRunStore()
	executor := pricerd.NewRunExecutor(store, metrics.NewCollector())

	grpcServer, healthServer := pricerd.NewGRPCServer(store, executor)
	grpcLis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logger.Error("failed to listen for gRPC", "addr", grpcAddr, "error", err)
		os.Exit(1)
	}

	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           pricerd.NewHTTPServer(store, executor).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Minute, // synchronous pricings can take minutes
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	if warmup {
		run, err := executor.Submit(cfg.Pricing.Request(), pricerd.SubmitOptions{RunID: "warmup"})
		if err != nil {
			logger.Error("warmup run rejected", "error", err)
		} else {
			logger.Info("warmup run started", "run_id", run.ID)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gRPC server listening", "addr", grpcAddr)
		return grpcServer.Serve(grpcLis)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		healthServer.SetServingStatus(pricerd.PricingServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if stopGRPC(shutdownCtx, grpcServer) {
			logger.Warn("gRPC drain timed out, in-flight RPCs were cancelled")
		}
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	executor.Wait()
	executor.Notifier().Wait()
	logger.Info("server stopped")
}

// stopGRPC drains in-flight RPCs until ctx expires, then closes the remaining
// connections. It reports whether the drain was cut short.
func stopGRPC(ctx context.Context, srv *grpc.Server) bool {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return false
	case <-ctx.Done():
		srv.Stop()
		<-done
		return true
	}
}

func newLogger(format, level string, w io.Writer) *slog.Logger {
	if format == "json" {
		return logger.New(level, w)
	}
	return logger.NewText(level, w)
}
