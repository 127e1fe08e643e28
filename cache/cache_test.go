package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whosonfirst/go-nearby-places"
)

func testDetails() *places.Details {

	rating := 4.5
	address := "Alexanderplatz 1, 10178 Berlin"

	return &places.Details{
		Rating:       &rating,
		Address:      &address,
		OpeningHours: []string{"Monday: 9:00 AM – 5:00 PM"},
	}
}

func TestCacheSchemes(t *testing.T) {
	schemes := CacheSchemes()

	assert.Contains(t, schemes, "memory://")
	assert.Contains(t, schemes, "null://")
	assert.Contains(t, schemes, "redis://")
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	_, err := NewCache(ctx, "bogus://")
	assert.Error(t, err, "Expected an unregistered scheme to fail")

	_, err = NewCache(ctx, "memory://?ttl=forever")
	assert.Error(t, err)

	_, err = NewCache(ctx, "memory://?ttl=-1s")
	assert.Error(t, err)
}

func TestNullCache(t *testing.T) {
	ctx := context.Background()

	c, err := NewCache(ctx, "null://")
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "p1", testDetails()))

	details, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, ok, "Expected the null cache never to hit")
	assert.Nil(t, details)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	c, err := NewCache(ctx, "memory://?ttl=1m")
	require.NoError(t, err)
	defer c.Close()

	t.Run("Miss", func(t *testing.T) {
		details, ok, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, details)
	})

	t.Run("Hit", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "p1", testDetails()))

		details, ok, err := c.Get(ctx, "p1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, testDetails(), details)
	})

	t.Run("Stored values are copies", func(t *testing.T) {
		d := testDetails()
		require.NoError(t, c.Set(ctx, "p2", d))

		d.Address = nil

		details, ok, err := c.Get(ctx, "p2")
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotNil(t, details.Address)
	})

	t.Run("Nil details", func(t *testing.T) {
		assert.Error(t, c.Set(ctx, "p3", nil))
	})
}

// Requires a running Redis server, for example:
//
//	NEARBY_TEST_REDIS_URI=redis://localhost:6379/0 go test ./cache/...
func TestRedisCache(t *testing.T) {
	ctx := context.Background()

	uri := os.Getenv("NEARBY_TEST_REDIS_URI")

	if uri == "" {
		t.Skip("NEARBY_TEST_REDIS_URI not set")
	}

	c, err := NewCache(ctx, uri+"?prefix=nearby:test:&ttl=1m")
	require.NoError(t, err)
	defer c.Close()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "p1", testDetails()))

	details, ok, err := c.Get(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testDetails(), details)
}
