// Package main is the entry point for the quote server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/quotestore/internal/auth"
	"github.com/vyrodovalexey/quotestore/internal/config"
	"github.com/vyrodovalexey/quotestore/internal/handler"
	"github.com/vyrodovalexey/quotestore/internal/server"
	"github.com/vyrodovalexey/quotestore/internal/service"
	"github.com/vyrodovalexey/quotestore/internal/store"
)

var errNoAuthenticators = errors.New("multi auth mode requires at least one authenticator")

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.Bool("events_enabled", cfg.EventsEnabled),
		zap.Int("popular_tags_limit", cfg.PopularTagsLimit),
		zap.String("auth_mode", cfg.AuthMode),
	)

	srv, err := newServer(cfg, logger)
	if err != nil {
		logger.Error("failed to build server", zap.Error(err))
		return 1
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// newServer wires the store, change feed, service and HTTP server.
func newServer(cfg *config.Config, logger *zap.Logger) (*server.Server, error) {
	authenticator, err := createAuthenticator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating authenticator: %w", err)
	}

	repo := store.NewMemoryStore()

	var (
		hub  *handler.EventHub
		opts []service.Option
	)
	if cfg.EventsEnabled {
		hub = handler.NewEventHub(logger.Named("events"))
		opts = append(opts, service.WithPublisher(hub))
	}

	quotes := service.New(repo, logger.Named("service"), opts...)

	return server.New(cfg, logger, quotes, hub, authenticator), nil
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// createAuthenticator creates an authenticator based on the config auth mode.
// A nil authenticator leaves mutating requests open.
func createAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	switch auth.Method(cfg.AuthMode) {
	case auth.MethodNone, "":
		logger.Info("authentication disabled")
		return nil, nil
	case auth.MethodBasic:
		logger.Info("authentication mode: basic auth")
		ba, err := auth.NewBasicAuthenticator(cfg.BasicAuthUsers)
		if err != nil {
			return nil, err
		}
		return ba, nil
	case auth.MethodAPIKey:
		logger.Info("authentication mode: API key")
		ak, err := auth.NewAPIKeyAuthenticator(cfg.APIKeys)
		if err != nil {
			return nil, err
		}
		return ak, nil
	case auth.MethodMulti:
		logger.Info("authentication mode: multi")
		return createMultiAuthenticator(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.AuthMode)
	}
}

// createMultiAuthenticator creates a multi-method authenticator
// from the available auth configurations.
func createMultiAuthenticator(cfg *config.Config, logger *zap.Logger) (auth.Authenticator, error) {
	var authenticators []auth.Authenticator

	if cfg.BasicAuthUsers != "" {
		ba, err := auth.NewBasicAuthenticator(cfg.BasicAuthUsers)
		if err != nil {
			return nil, fmt.Errorf("creating basic authenticator: %w", err)
		}
		authenticators = append(authenticators, ba)
		logger.Info("multi-auth: basic auth enabled")
	}

	if cfg.APIKeys != "" {
		ak, err := auth.NewAPIKeyAuthenticator(cfg.APIKeys)
		if err != nil {
			return nil, fmt.Errorf("creating API key authenticator: %w", err)
		}
		authenticators = append(authenticators, ak)
		logger.Info("multi-auth: API key auth enabled")
	}

	if len(authenticators) == 0 {
		return nil, errNoAuthenticators
	}

	return auth.NewMultiAuthenticator(authenticators...), nil
}
