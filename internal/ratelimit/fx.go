package ratelimit

import (
	"context"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const cooldownKeyPrefix = "vyapar:cooldown:"

var Module = fx.Module("rate.limit",
	fx.Provide(NewRedisClient),
	fx.Provide(NewCooldown),
)

// NewRedisClient returns nil when REDIS_ADDR is unset.
func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewCooldown(client *redis.Client, clk clock.Clock, log *zap.Logger) Cooldown {
	if client == nil {
		log.Info("cooldowns kept in memory")
		return NewMemoryCooldown(clk)
	}
	log.Info("cooldowns kept in redis")
	return NewRedisCooldown(client, cooldownKeyPrefix)
}
