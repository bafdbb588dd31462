package cache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/pkg/logger"
)

// Redis inalcanzable: Get es miss y Set no falla.
func TestRedisSummaryCache_DegradaSinRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	var buf bytes.Buffer
	c := NewRedisSummaryCacheWithClient(client, 0, logger.New(logger.Config{Level: "warn", Output: &buf}))
	ctx := context.Background()

	c.Set(ctx, "k", &dto.DashboardSummaryDTO{TotalRequests: 3, CommittedSpend: decimal.NewFromInt(10)})
	got, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.Contains(t, buf.String(), "dashboard cache")
	assert.Equal(t, 30*time.Second, c.ttl)
	assert.NoError(t, c.Close(), "un cliente ajeno no se cierra")
}

func TestRedisSummaryCache_SetNilNoEscribe(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	var buf bytes.Buffer
	c := NewRedisSummaryCacheWithClient(client, time.Minute, logger.New(logger.Config{Level: "warn", Output: &buf}))
	c.Set(context.Background(), "k", nil)
	assert.Empty(t, buf.String())
}
