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

func newTestProvider(t *testing.T, ttl time.Duration) (*StorageProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStorageProvider(client, ttl), mr
}

func TestStorage_SetGetAll(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, time.Hour)
	s := p.Scope("sid-1")

	require.NoError(t, s.Set(ctx, map[string]string{"token": "abc", "locale": "ar"}))

	v, ok, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "abc", "locale": "ar"}, all)

	assert.True(t, mr.Exists("console:session:sid-1"))
	assert.Equal(t, time.Hour, mr.TTL("console:session:sid-1"))
}

func TestStorage_GetMissing(t *testing.T) {
	p, _ := newTestProvider(t, time.Hour)

	v, ok, err := p.Scope("nobody").Get(context.Background(), "token")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestStorage_Remove(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t, time.Hour)
	s := p.Scope("sid-1")
	require.NoError(t, s.Set(ctx, map[string]string{"token": "abc", "user": "{}", "locale": "en"}))

	require.NoError(t, s.Remove(ctx, "token", "user"))

	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"locale": "en"}, all)
}

func TestStorage_ScopesAreIsolated(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProvider(t, time.Hour)
	require.NoError(t, p.Scope("a").Set(ctx, map[string]string{"token": "a"}))

	all, err := p.Scope("b").All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStorage_SlidingExpiry(t *testing.T) {
	ctx := context.Background()
	p, mr := newTestProvider(t, time.Minute)
	s := p.Scope("sid-1")
	require.NoError(t, s.Set(ctx, map[string]string{"token": "abc"}))

	mr.FastForward(40 * time.Second)
	_, err := s.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("console:session:sid-1"))

	mr.FastForward(61 * time.Second)
	all, err := s.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
