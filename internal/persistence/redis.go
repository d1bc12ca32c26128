package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sinless777/helix-support/internal/config"
	"github.com/sinless777/helix-support/internal/domain"
)

const roleKeyPrefix = "role:"

// Redis wraps the go-redis client. The role ledger uses it as a
// read-through cache: every authorized call resolves the caller's role,
// so the hot path avoids a ledger query until an assignment invalidates
// the entry.
type Redis struct {
	Client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client, ttl: cfg.RoleCacheTTL(), logger: logger}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// GetRole returns a cached role for the user, if present. Cache misses
// and transport errors both report a miss; the ledger is authoritative.
func (r *Redis) GetRole(ctx context.Context, userID string) (domain.Role, bool) {
	if r == nil || r.Client == nil {
		return "", false
	}
	val, err := r.Client.Get(ctx, roleKeyPrefix+userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("role cache read failed", zap.Error(err))
		}
		return "", false
	}
	role := domain.Role(val)
	if !role.Valid() {
		return "", false
	}
	return role, true
}

// SetRole stores the resolved role with the configured TTL.
func (r *Redis) SetRole(ctx context.Context, userID string, role domain.Role) {
	if r == nil || r.Client == nil {
		return
	}
	if err := r.Client.Set(ctx, roleKeyPrefix+userID, string(role), r.ttl).Err(); err != nil {
		r.logger.Warn("role cache write failed", zap.Error(err))
	}
}

// InvalidateRole drops the cached role after an assignment.
func (r *Redis) InvalidateRole(ctx context.Context, userID string) {
	if r == nil || r.Client == nil {
		return
	}
	if err := r.Client.Del(ctx, roleKeyPrefix+userID).Err(); err != nil {
		r.logger.Warn("role cache invalidation failed", zap.Error(err))
	}
}
