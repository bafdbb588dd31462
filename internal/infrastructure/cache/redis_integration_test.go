//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/pkg/config"
)

func TestRedisSummaryCache_Integracion(t *testing.T) {
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "no se pudo iniciar Redis")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	c, err := NewRedisSummaryCache(ctx, config.RedisConfig{Addr: endpoint, SummaryTTL: time.Second}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, ok := c.Get(ctx, "dept:x")
	assert.False(t, ok)

	in := &dto.DashboardSummaryDTO{
		TotalRequests:  4,
		PendingCount:   1,
		CountsByStatus: map[string]int{"Pending": 1, "Approved": 3},
		CommittedSpend: decimal.RequireFromString("400.50"),
	}
	c.Set(ctx, "dept:x", in)

	out, ok := c.Get(ctx, "dept:x")
	require.True(t, ok)
	assert.Equal(t, 4, out.TotalRequests)
	assert.Equal(t, 3, out.CountsByStatus["Approved"])
	assert.True(t, out.CommittedSpend.Equal(in.CommittedSpend))

	require.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "dept:x")
		return !ok
	}, 5*time.Second, 100*time.Millisecond, "la entrada debe expirar por TTL")
}
