package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/khoahotran/talent-match/internal/domain/feed"
	"github.com/khoahotran/talent-match/internal/domain/opportunity"
	"github.com/khoahotran/talent-match/pkg/logger"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestRedisLocker(t *testing.T) {
	rdb := startRedis(t)
	locker := NewRedisLocker(rdb, logger.NewNop())
	ctx := context.Background()

	release, ok, err := locker.TryLock(ctx, "enrich:p1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "enrich:p1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	release()

	release2, ok, err := locker.TryLock(ctx, "enrich:p1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	release2()
}

func TestRedisPageCache(t *testing.T) {
	rdb := startRedis(t)
	cache := NewRedisPageCache(rdb, time.Minute)
	ctx := context.Background()
	userID, epoch := uuid.New(), uuid.New()

	got, err := cache.Get(ctx, userID, epoch, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	score := 87.5
	page := feed.Page{
		Number:  1,
		HasMore: true,
		Items: []feed.MatchResult{{
			Opportunity: opportunity.Opportunity{ID: uuid.New(), Title: "Go Engineer"},
			Score:       &score,
			Provenance:  feed.ProvenanceAI,
		}},
	}
	require.NoError(t, cache.Put(ctx, userID, epoch, page))

	got, err = cache.Get(ctx, userID, epoch, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.HasMore)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Go Engineer", got.Items[0].Title)
	assert.Equal(t, 87.5, *got.Items[0].Score)

	other, err := cache.Get(ctx, userID, uuid.New(), 1)
	require.NoError(t, err)
	assert.Nil(t, other, "pages are scoped to the session epoch")

	require.NoError(t, cache.Delete(ctx, userID, epoch, 1))
	got, err = cache.Get(ctx, userID, epoch, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}
