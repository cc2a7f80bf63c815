package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"github.com/georadical/layer-flow/db"
	"github.com/georadical/layer-flow/pkg/auth"
	"github.com/georadical/layer-flow/pkg/httpserver"
	"github.com/georadical/layer-flow/pkg/logger"
	"github.com/georadical/layer-flow/pkg/mongo"
	"github.com/georadical/layer-flow/pkg/oauthstate"
	"github.com/georadical/layer-flow/pkg/pg"
	"github.com/georadical/layer-flow/pkg/ratelimiter"
	"github.com/georadical/layer-flow/pkg/redis"
	"github.com/georadical/layer-flow/pkg/userstore"
)

// userBackend is the user directory with its readiness check and cleanup.
type userBackend struct {
	store auth.UserDirectory
	check httpserver.Check
	close func()
}

func openUserStore(ctx context.Context, cfg AppConfig, log *slog.Logger) (userBackend, error) {
	log = log.With(logger.Backend(cfg.UserStore))

	switch cfg.UserStore {
	case backendPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return userBackend{}, fmt.Errorf("postgres: %w", err)
		}
		if err := pg.Migrate(ctx, pool, db.Migrations, db.MigrationsDir, cfg.Postgres, log); err != nil {
			pool.Close()
			return userBackend{}, fmt.Errorf("postgres migrations: %w", err)
		}
		log.Info("user store ready")
		return userBackend{
			store: userstore.NewPostgres(pool),
			check: httpserver.Check{Name: "users", Fn: pg.Healthcheck(pool)},
			close: pool.Close,
		}, nil

	case backendMongo:
		database, err := mongo.NewWithDatabase(ctx, cfg.Mongo)
		if err != nil {
			return userBackend{}, fmt.Errorf("mongo: %w", err)
		}
		client := database.Client()
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		store := userstore.NewMongo(database)
		if err := store.EnsureIndexes(ctx); err != nil {
			disconnect()
			return userBackend{}, fmt.Errorf("mongo indexes: %w", err)
		}
		log.Info("user store ready")
		return userBackend{
			store: store,
			check: httpserver.Check{Name: "users", Fn: mongo.Healthcheck(client)},
			close: disconnect,
		}, nil

	default:
		log.Warn("using in-memory user store, accounts are lost on restart")
		store := userstore.NewMemory()
		return userBackend{
			store: store,
			check: httpserver.Check{Name: "users", Fn: store.Healthcheck},
			close: func() {},
		}, nil
	}
}

// openRedis connects when any component is configured to use Redis.
func openRedis(ctx context.Context, cfg AppConfig) (*goredis.Client, error) {
	if cfg.StateStore != backendRedis && cfg.RateLimitStore != backendRedis {
		return nil, nil
	}
	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return client, nil
}

func openStateStore(cfg AppConfig, client *goredis.Client, log *slog.Logger) (auth.StateStore, httpserver.Check) {
	log = log.With(logger.Backend(cfg.StateStore))

	if cfg.StateStore == backendRedis {
		store := oauthstate.NewRedis(client, cfg.OAuth.StatePrefix)
		log.Info("state store ready")
		return store, httpserver.Check{Name: "oauth_states", Fn: store.Healthcheck}
	}

	log.Warn("using in-memory oauth state store, run a single instance only")
	store := oauthstate.NewMemory()
	return store, httpserver.Check{Name: "oauth_states", Fn: store.Healthcheck}
}

// openThrottle returns the credential endpoint rate limiter, or nil when
// rate limiting is disabled.
func openThrottle(cfg AppConfig, client *goredis.Client, log *slog.Logger) (func(http.Handler) http.Handler, func(), error) {
	if !cfg.RateLimit.Enabled {
		return nil, func() {}, nil
	}

	var (
		store ratelimiter.Store
		closeStore = func() {}
	)
	if cfg.RateLimitStore == backendRedis {
		store = ratelimiter.NewRedisStore(client, "")
	} else {
		mem := ratelimiter.NewMemoryStore()
		store, closeStore = mem, mem.Close
	}

	bucket, err := ratelimiter.NewBucket(store, cfg.RateLimit)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	key := ratelimiter.Composite(ratelimiter.ClientIP, ratelimiter.Route)
	return ratelimiter.Middleware(bucket, key, log.With(logger.Backend(cfg.RateLimitStore))), closeStore, nil
}

// providers builds an adapter for every provider with a client id.
func providers(cfg AppConfig, states auth.StateStore) []auth.ProviderAdapter {
	opts := []auth.ProviderOption{
		auth.WithStateTTL(cfg.OAuth.StateTTL),
		auth.WithProviderTimeout(cfg.OAuth.ProviderTimeout),
	}

	var out []auth.ProviderAdapter
	if cfg.Google.Enabled() {
		out = append(out, auth.NewGoogleProvider(cfg.Google, states, opts...))
	}
	if cfg.Microsoft.Enabled() {
		out = append(out, auth.NewMicrosoftProvider(cfg.Microsoft, states, opts...))
	}
	if cfg.GitHub.Enabled() {
		out = append(out, auth.NewGitHubProvider(cfg.GitHub, states, opts...))
	}
	return out
}
