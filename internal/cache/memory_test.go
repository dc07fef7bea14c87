package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is an adjustable clock for expiry tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestMemory_SetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(16, nil)

	payload, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, payload)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	payload, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), payload)
}

func TestMemory_ExpiredEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := NewMemory(16, clock.now)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))

	clock.advance(59 * time.Second)
	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	clock.advance(2 * time.Second)
	_, ok, err = m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// The expired entry is swept by the read, not left to count against the
	// ceiling.
	assert.Equal(t, 0, m.Len())
}

func TestMemory_OverwriteRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := NewMemory(16, clock.now)

	require.NoError(t, m.Set(ctx, "k", []byte("old"), time.Minute))
	clock.advance(50 * time.Second)
	require.NoError(t, m.Set(ctx, "k", []byte("new"), time.Minute))
	clock.advance(30 * time.Second)

	payload, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), payload)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_SweepsExpiredBeforeEvicting(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := NewMemory(4, clock.now)

	for i := 0; i < 4; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("old%d", i), []byte("v"), time.Second))
	}
	clock.advance(time.Minute)

	require.NoError(t, m.Set(ctx, "fresh", []byte("v"), time.Minute))
	assert.Equal(t, 1, m.Len())
	_, ok, _ := m.Get(ctx, "fresh")
	assert.True(t, ok)
}

func TestMemory_EvictsOldestHalfWhenFull(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	m := NewMemory(4, clock.now)

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), time.Hour))
		clock.advance(time.Second)
	}

	// k0 and k1 were the oldest at the point the ceiling broke.
	assert.Equal(t, 3, m.Len())
	for i, wantHit := range []bool{false, false, true, true, true} {
		_, ok, _ := m.Get(ctx, fmt.Sprintf("k%d", i))
		assert.Equalf(t, wantHit, ok, "k%d", i)
	}
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(16, nil)

	require.NoError(t, m.Set(ctx, "portfolio:a:summary", []byte("1"), time.Minute))
	require.NoError(t, m.Set(ctx, "portfolio:a:positions", []byte("2"), time.Minute))
	require.NoError(t, m.Set(ctx, "portfolio:b:summary", []byte("3"), time.Minute))

	require.NoError(t, m.DeleteByPrefix(ctx, "portfolio:a:"))
	assert.Equal(t, 1, m.Len())
	_, ok, _ := m.Get(ctx, "portfolio:b:summary")
	assert.True(t, ok)
}

func TestKeys_PortfolioScopedKeysShareSweepPrefix(t *testing.T) {
	id := uuid.New()
	prefix := PortfolioPrefix(id)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	for _, key := range []string{
		EquityCurveKey(id, start, end),
		SummaryKey(id),
		AllocationKey(id, "value"),
		PositionsKey(id),
	} {
		assert.Truef(t, len(key) > len(prefix) && key[:len(prefix)] == prefix, "key %s", key)
	}
}

func TestKeys_DCAKeyDependsOnEveryParameter(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	base := DCAKey([]string{"BTC"}, start, end, 100, 7, "100")

	assert.NotEqual(t, base, DCAKey([]string{"ETH"}, start, end, 100, 7, "100"))
	assert.NotEqual(t, base, DCAKey([]string{"BTC"}, start, end, 200, 7, "100"))
	assert.NotEqual(t, base, DCAKey([]string{"BTC"}, start, end, 100, 14, "100"))
	assert.NotEqual(t, base, DCAKey([]string{"BTC"}, start, end, 100, 7, "70/30"))
	assert.NotEqual(t, base, DCAKey([]string{"BTC"}, start, start, 100, 7, "100"))
}
