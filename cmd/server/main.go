package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/georadical/layer-flow/modules/account"
	"github.com/georadical/layer-flow/pkg/auth"
	"github.com/georadical/layer-flow/pkg/config"
	"github.com/georadical/layer-flow/pkg/httpserver"
	"github.com/georadical/layer-flow/pkg/jwt"
	"github.com/georadical/layer-flow/pkg/logger"
	"github.com/georadical/layer-flow/pkg/password"
	"github.com/georadical/layer-flow/pkg/telemetry"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg AppConfig
	if err := config.Load(&cfg, config.WithDefaultEnvFile()); err != nil {
		return err
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Environment, cfg.ServiceName),
		logger.WithConfig(cfg.Log),
		logger.WithContextExtractors(httpserver.RequestIDExtractor),
	)
	logger.SetAsDefault(log)

	tp, shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.ServiceName)
	if err != nil {
		return err
	}

	// Released in reverse order when the server stops or startup fails.
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	users, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, users.close)

	redisClient, err := openRedis(ctx, cfg)
	if err != nil {
		cleanup()
		return err
	}
	if redisClient != nil {
		cleanups = append(cleanups, func() { _ = redisClient.Close() })
	}

	states, statesCheck := openStateStore(cfg, redisClient, log)

	throttle, closeThrottle, err := openThrottle(cfg, redisClient, log)
	if err != nil {
		cleanup()
		return fmt.Errorf("rate limiter: %w", err)
	}
	cleanups = append(cleanups, closeThrottle)

	tokens, err := jwt.NewFromString(cfg.Token.SecretKey,
		jwt.WithAlgorithm(cfg.Token.Algorithm),
		jwt.WithIssuer(cfg.Token.Issuer),
	)
	if err != nil {
		cleanup()
		return fmt.Errorf("token codec: %w", err)
	}

	svc := auth.NewService(users.store, password.New(cfg.Argon2), tokens,
		auth.WithLogger(log),
		auth.WithTokenTTL(cfg.Token.TTL()),
		auth.WithProviders(providers(cfg, states)...),
		auth.WithTracerProvider(tp),
	)
	log.Info("authentication service ready", slog.Any("providers", svc.Providers()))

	accounts := account.NewHandler(svc, cfg.Account,
		account.WithLogger(log),
		account.WithThrottle(throttle),
	)
	router := newRouter(cfg, accounts, log, users.check, statesCheck)

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func() {
			cleanup()
			if err := shutdownTracing(context.Background()); err != nil {
				log.Error("failed to flush traces", logger.Error(err))
			}
		}),
	)
	if err := srv.Run(ctx, router); err != nil {
		// Stop hooks only run after a graceful shutdown.
		cleanup()
		_ = shutdownTracing(context.Background())
		return err
	}
	return nil
}
