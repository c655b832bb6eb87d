package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEvent struct {
	ID    int64     `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
}

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestClient_FillAndGet(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()
	date := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)

	gen, err := c.Generation(ctx, "event:1")
	require.NoError(t, err)
	assert.Zero(t, gen)

	stored, err := c.SetIfGeneration(ctx, "event:1", gen, cachedEvent{ID: 1, Title: "Jazz", Date: date}, 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	var got cachedEvent
	found, err := c.Get(ctx, "event:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Jazz", got.Title)
	assert.True(t, date.Equal(got.Date))

	// ttl is honoured
	mr.FastForward(6 * time.Minute)
	found, err = c.Get(ctx, "event:1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_Miss(t *testing.T) {
	c, _ := newTestClient(t)
	var got cachedEvent
	found, err := c.Get(context.Background(), "event:404", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestClient_CorruptPayloadIsMiss(t *testing.T) {
	c, mr := newTestClient(t)
	require.NoError(t, mr.Set("event:2", "{not json"))

	var got cachedEvent
	found, err := c.Get(context.Background(), "event:2", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists("event:2"))
}

func TestClient_InvalidateRefusesStaleFill(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	// a reader takes the generation, then an edit invalidates before it fills
	gen, err := c.Generation(ctx, "event:3")
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "event:3"))

	stored, err := c.SetIfGeneration(ctx, "event:3", gen, cachedEvent{ID: 3, Title: "Old"}, time.Minute)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("event:3"))

	// the next reader sees the bumped generation and may fill
	gen, err = c.Generation(ctx, "event:3")
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)
	stored, err = c.SetIfGeneration(ctx, "event:3", gen, cachedEvent{ID: 3, Title: "New"}, time.Minute)
	require.NoError(t, err)
	assert.True(t, stored)

	require.NoError(t, c.Invalidate(ctx, "event:3"))
	assert.False(t, mr.Exists("event:3"))
	assert.Greater(t, mr.TTL("event:3:gen"), time.Duration(0))
}

func TestClient_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	mr.Close()

	var got cachedEvent
	_, err := c.Get(context.Background(), "event:1", &got)
	assert.Error(t, err)
}

func TestNew_Unreachable(t *testing.T) {
	_, err := New("redis://127.0.0.1:1")
	assert.Error(t, err)
}
