package main

import (
	"fmt"
	"time"

	"github.com/georadical/layer-flow/modules/account"
	"github.com/georadical/layer-flow/pkg/auth"
	"github.com/georadical/layer-flow/pkg/httpserver"
	"github.com/georadical/layer-flow/pkg/logger"
	"github.com/georadical/layer-flow/pkg/mongo"
	"github.com/georadical/layer-flow/pkg/password"
	"github.com/georadical/layer-flow/pkg/pg"
	"github.com/georadical/layer-flow/pkg/ratelimiter"
	"github.com/georadical/layer-flow/pkg/redis"
	"github.com/georadical/layer-flow/pkg/telemetry"
)

// Storage backends.
const (
	backendPostgres = "postgres"
	backendMongo    = "mongo"
	backendMemory   = "memory"
	backendRedis    = "redis"
)

// AppConfig is the whole process configuration, loaded once at start.
type AppConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	ServiceName string `env:"PROJECT_NAME" envDefault:"layer-flow-backend"`
	APIPrefix   string `env:"API_V1_PREFIX" envDefault:"/api/v1"`

	UserStore      string `env:"USER_STORE" envDefault:"postgres"`
	StateStore     string `env:"STATE_STORE" envDefault:"memory"`
	RateLimitStore string `env:"RATE_LIMIT_STORE" envDefault:"memory"`

	Token TokenConfig
	OAuth OAuthConfig

	Log       logger.Config
	HTTP      httpserver.Config
	Postgres  pg.Config
	Mongo     mongo.Config
	Redis     redis.Config
	Telemetry telemetry.Config
	RateLimit ratelimiter.Config
	Argon2    password.Params
	Account   account.Config

	Google    auth.GoogleConfig
	Microsoft auth.MicrosoftConfig
	GitHub    auth.GitHubConfig
}

// TokenConfig configures access token issuance.
type TokenConfig struct {
	SecretKey     string `env:"SECRET_KEY,required,notEmpty"`
	Algorithm     string `env:"ALGORITHM" envDefault:"HS256"`
	ExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" envDefault:"60"`
	Issuer        string `env:"TOKEN_ISSUER"`
}

// TTL returns the access token lifetime.
func (c TokenConfig) TTL() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

// OAuthConfig holds settings shared by every federation provider.
type OAuthConfig struct {
	StateTTL        time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	ProviderTimeout time.Duration `env:"OAUTH_PROVIDER_TIMEOUT" envDefault:"10s"`
	StatePrefix     string        `env:"OAUTH_STATE_PREFIX" envDefault:"oauth:state:"`
}

func (c AppConfig) validate() error {
	switch c.UserStore {
	case backendPostgres, backendMongo, backendMemory:
	default:
		return fmt.Errorf("unknown USER_STORE %q", c.UserStore)
	}
	switch c.StateStore {
	case backendRedis, backendMemory:
	default:
		return fmt.Errorf("unknown STATE_STORE %q", c.StateStore)
	}
	switch c.RateLimitStore {
	case backendRedis, backendMemory:
	default:
		return fmt.Errorf("unknown RATE_LIMIT_STORE %q", c.RateLimitStore)
	}
	if c.Token.ExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.Token.ExpireMinutes)
	}
	return nil
}
