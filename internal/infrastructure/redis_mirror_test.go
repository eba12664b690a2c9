package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMirror(t *testing.T) (*RedisRecordMirror, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	mirror := NewRedisRecordMirror(server.Addr(), "", testLogger)
	t.Cleanup(func() { mirror.Close() })

	return mirror, server
}

func TestRedisRecordMirror_PutAndGet(t *testing.T) {
	mirror, _ := newTestMirror(t)
	ctx := context.Background()

	record := sampleRecord()
	require.NoError(t, mirror.Put(ctx, "site-1", "visitor-9", record, 30*24*time.Hour))

	loaded, err := mirror.Get(ctx, "site-1", "visitor-9")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record, *loaded)
}

func TestRedisRecordMirror_MissReturnsNil(t *testing.T) {
	mirror, _ := newTestMirror(t)

	loaded, err := mirror.Get(context.Background(), "site-1", "unknown")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisRecordMirror_KeysAreScopedPerSiteAndVisitor(t *testing.T) {
	mirror, server := newTestMirror(t)
	ctx := context.Background()

	require.NoError(t, mirror.Put(ctx, "site-1", "visitor-9", sampleRecord(), time.Hour))

	assert.True(t, server.Exists("attribution:site-1:visitor-9"))

	other, err := mirror.Get(ctx, "site-2", "visitor-9")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestRedisRecordMirror_TTLMatchesCookieWindow(t *testing.T) {
	mirror, server := newTestMirror(t)
	ttl := 30 * 24 * time.Hour

	require.NoError(t, mirror.Put(context.Background(), "site-1", "visitor-9", sampleRecord(), ttl))
	assert.Equal(t, ttl, server.TTL("attribution:site-1:visitor-9"))

	// Expiry is rolling: a later put refreshes the window.
	server.FastForward(12 * time.Hour)
	require.NoError(t, mirror.Put(context.Background(), "site-1", "visitor-9", sampleRecord(), ttl))
	assert.Equal(t, ttl, server.TTL("attribution:site-1:visitor-9"))
}

func TestRedisRecordMirror_CorruptEntryTreatedAsMiss(t *testing.T) {
	mirror, server := newTestMirror(t)

	require.NoError(t, server.Set("attribution:site-1:visitor-9", "not json"))

	loaded, err := mirror.Get(context.Background(), "site-1", "visitor-9")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
