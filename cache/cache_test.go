package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	_, err := c.Get(ctx, ShareKey("abc"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, ShareKey("abc"), []byte(`{"success":true}`), 0))
	got, err := c.Get(ctx, ShareKey("abc"))
	require.NoError(t, err)
	assert.Equal(t, `{"success":true}`, string(got))

	// expiry
	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, ShareKey("abc"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("CATERING_TEST_REDIS_URL")
	if url == "" {
		t.Skip("Skipping Redis tests: CATERING_TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	c, err := NewRedisCache(ctx, url, "catering-test:", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, ShareKey("tok"), []byte("body"), 0))
	got, err := c.Get(ctx, ShareKey("tok"))
	require.NoError(t, err)
	assert.Equal(t, "body", string(got))

	require.NoError(t, c.Delete(ctx, ShareKey("tok")))
	_, err = c.Get(ctx, ShareKey("tok"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Close())
	_, err = c.Get(ctx, ShareKey("tok"))
	assert.ErrorIs(t, err, ErrCacheClosed)
}

func TestNewRedisCache_RequiresURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), "", "", time.Minute)
	assert.Error(t, err)

	_, err = NewRedisCache(context.Background(), "not-a-url://", "", time.Minute)
	assert.Error(t, err)
}
