package oauthstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/georadical/layer-flow/pkg/auth"
	redisx "github.com/georadical/layer-flow/pkg/redis"
)

// DefaultKeyPrefix namespaces state keys.
const DefaultKeyPrefix = "oauth:state:"

// Redis stores states as JSON values with a native TTL.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis creates a store on client. An empty prefix uses DefaultKeyPrefix.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Save(ctx context.Context, state string, pending auth.PendingAuthorization, ttl time.Duration) error {
	if state == "" {
		return ErrEmptyState
	}
	if ttl <= 0 {
		return ErrInvalidTTL
	}

	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("encode oauth state: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.prefix+state, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store oauth state: %w", err)
	}
	if !ok {
		return ErrStateExists
	}
	return nil
}

// Consume reads and deletes the state in one GETDEL round trip.
func (r *Redis) Consume(ctx context.Context, state string) (auth.PendingAuthorization, error) {
	if state == "" {
		return auth.PendingAuthorization{}, auth.ErrStateNotFound
	}

	raw, err := r.client.GetDel(ctx, r.prefix+state).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return auth.PendingAuthorization{}, auth.ErrStateNotFound
		}
		return auth.PendingAuthorization{}, fmt.Errorf("consume oauth state: %w", err)
	}

	var pending auth.PendingAuthorization
	if err := json.Unmarshal(raw, &pending); err != nil {
		return auth.PendingAuthorization{}, fmt.Errorf("decode oauth state: %w", err)
	}
	return pending, nil
}

// Healthcheck pings Redis.
func (r *Redis) Healthcheck(ctx context.Context) error {
	return redisx.Healthcheck(r.client)(ctx)
}

var _ auth.StateStore = (*Redis)(nil)
