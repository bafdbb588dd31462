// Package cache implementa la caché opcional del resumen del tablero sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/procurement-api/internal/application/analytics"
	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/pkg/config"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

var _ analytics.SummaryCache = (*RedisSummaryCache)(nil)

const keyPrefix = "procurement:dashboard:"

// RedisSummaryCache guarda resúmenes serializados en JSON con TTL.
// Un fallo de Redis se registra y se trata como miss: el tablero nunca falla por la caché.
type RedisSummaryCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	log        *logger.Logger
}

// NewRedisSummaryCache conecta a Redis y verifica con PING.
func NewRedisSummaryCache(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisSummaryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	c := NewRedisSummaryCacheWithClient(client, cfg.SummaryTTL, log)
	c.ownsClient = true
	return c, nil
}

// NewRedisSummaryCacheWithClient usa un cliente existente; el llamador lo cierra.
func NewRedisSummaryCacheWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *RedisSummaryCache {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisSummaryCache{client: client, ttl: ttl, log: log}
}

func (c *RedisSummaryCache) Get(ctx context.Context, key string) (*dto.DashboardSummaryDTO, bool) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("dashboard cache get failed")
		return nil, false
	}
	var s dto.DashboardSummaryDTO
	if err := json.Unmarshal(data, &s); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("dashboard cache entry corrupt")
		return nil, false
	}
	return &s, true
}

func (c *RedisSummaryCache) Set(ctx context.Context, key string, summary *dto.DashboardSummaryDTO) {
	if summary == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("dashboard cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("dashboard cache set failed")
	}
}

// Ping verifica la conexión; lo usa el health check.
func (c *RedisSummaryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente solo si fue creado por NewRedisSummaryCache.
func (c *RedisSummaryCache) Close() error {
	if !c.ownsClient {
		return nil
	}
	return c.client.Close()
}
