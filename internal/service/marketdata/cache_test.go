package marketdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
	"github.com/nkjh2020/investment-manager/internal/infra/cache"
)

// fakeProvider is a scripted price.Provider
type fakeProvider struct {
	mu        sync.Mutex
	series    map[string][]price.PricePoint
	snapshots map[string]*price.IndexSnapshot
	err       error
	block     chan struct{}

	seriesCalls atomic.Int32
	indexCalls  atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		series:    make(map[string][]price.PricePoint),
		snapshots: make(map[string]*price.IndexSnapshot),
	}
}

func (f *fakeProvider) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeProvider) FetchDailySeries(ctx context.Context, symbol string) ([]price.PricePoint, error) {
	f.seriesCalls.Add(1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.series[symbol], nil
}

func (f *fakeProvider) FetchIndexSnapshot(ctx context.Context, symbol string) (*price.IndexSnapshot, error) {
	f.indexCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	snap, ok := f.snapshots[symbol]
	if !ok {
		return nil, price.ErrNoData
	}
	return snap, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCache(p price.Provider) (*PriceSeriesCache, *testClock) {
	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	c := NewPriceSeriesCache(
		p,
		cache.NewMemoryStore[[]price.PricePoint]().WithClock(clock.Now),
		cache.NewMemoryStore[price.IndexSnapshot]().WithClock(clock.Now),
		Config{Now: clock.Now},
	)
	return c, clock
}

func TestToProviderSymbol(t *testing.T) {
	assert.Equal(t, "005930.KS", ToProviderSymbol("005930"))
	assert.Equal(t, "247540.KQ", ToProviderSymbol("247540"))
	assert.Equal(t, "028300.KQ", ToProviderSymbol("028300"))
}

func TestGetDailySeries(t *testing.T) {
	ctx := context.Background()
	series := []price.PricePoint{{Date: "2026-03-02", Close: 100, Volume: 10}}

	t.Run("cached within TTL", func(t *testing.T) {
		p := newFakeProvider()
		p.series["005930.KS"] = series
		c, clock := newTestCache(p)

		got, err := c.GetDailySeries(ctx, "005930")
		require.NoError(t, err)
		assert.Equal(t, series, got)

		clock.Advance(23 * time.Hour)
		_, err = c.GetDailySeries(ctx, "005930")
		require.NoError(t, err)
		assert.Equal(t, int32(1), p.seriesCalls.Load())

		clock.Advance(time.Hour)
		_, err = c.GetDailySeries(ctx, "005930")
		require.NoError(t, err)
		assert.Equal(t, int32(2), p.seriesCalls.Load(), "expired after 24h")
	})

	t.Run("stale value served on upstream failure", func(t *testing.T) {
		p := newFakeProvider()
		p.series["005930.KS"] = series
		c, clock := newTestCache(p)

		_, err := c.GetDailySeries(ctx, "005930")
		require.NoError(t, err)

		clock.Advance(48 * time.Hour)
		p.setErr(price.ErrProviderStatus)

		got, err := c.GetDailySeries(ctx, "005930")
		require.NoError(t, err)
		assert.Equal(t, series, got)
		assert.Equal(t, int64(1), c.Stats(ctx).StaleServed)
	})

	t.Run("empty series when nothing cached", func(t *testing.T) {
		p := newFakeProvider()
		p.setErr(errors.New("timeout"))
		c, _ := newTestCache(p)

		got, err := c.GetDailySeries(ctx, "000660")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("cancelled context with nothing cached", func(t *testing.T) {
		p := newFakeProvider()
		p.block = make(chan struct{})
		defer close(p.block)
		c, _ := newTestCache(p)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.GetDailySeries(cctx, "000660")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("concurrent misses are coalesced", func(t *testing.T) {
		p := newFakeProvider()
		p.series["035720.KS"] = series
		p.block = make(chan struct{})
		c, _ := newTestCache(p)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := c.GetDailySeries(ctx, "035720")
				assert.NoError(t, err)
				assert.Len(t, got, 1)
			}()
		}

		require.Eventually(t, func() bool { return p.seriesCalls.Load() == 1 }, time.Second, time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		close(p.block)
		wg.Wait()

		assert.Equal(t, int32(1), p.seriesCalls.Load())
	})
}

func TestGetIndexSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("1h TTL", func(t *testing.T) {
		p := newFakeProvider()
		p.snapshots[price.SymbolVIX] = &price.IndexSnapshot{Current: 18}
		c, clock := newTestCache(p)

		snap, err := c.GetIndexSnapshot(ctx, price.SymbolVIX)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, 18.0, snap.Current)

		clock.Advance(59 * time.Minute)
		_, _ = c.GetIndexSnapshot(ctx, price.SymbolVIX)
		assert.Equal(t, int32(1), p.indexCalls.Load())

		clock.Advance(time.Minute)
		_, _ = c.GetIndexSnapshot(ctx, price.SymbolVIX)
		assert.Equal(t, int32(2), p.indexCalls.Load())
	})

	t.Run("nil when unavailable", func(t *testing.T) {
		c, _ := newTestCache(newFakeProvider())

		snap, err := c.GetIndexSnapshot(ctx, price.SymbolKOSPI)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("stale snapshot on failure", func(t *testing.T) {
		p := newFakeProvider()
		p.snapshots[price.SymbolSP500] = &price.IndexSnapshot{Current: 5000, ChangePct: -1.2}
		c, clock := newTestCache(p)

		_, _ = c.GetIndexSnapshot(ctx, price.SymbolSP500)
		clock.Advance(2 * time.Hour)
		p.setErr(price.ErrProviderUnavailable)

		snap, err := c.GetIndexSnapshot(ctx, price.SymbolSP500)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, -1.2, snap.ChangePct)
	})
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	p := newFakeProvider()
	p.series["005930.KS"] = []price.PricePoint{{Close: 1}}
	p.series["247540.KQ"] = []price.PricePoint{{Close: 2}}
	p.snapshots[price.SymbolVIX] = &price.IndexSnapshot{Current: 15}
	c, _ := newTestCache(p)

	warm := func() {
		_, _ = c.GetDailySeries(ctx, "005930")
		_, _ = c.GetDailySeries(ctx, "247540")
		_, _ = c.GetIndexSnapshot(ctx, price.SymbolVIX)
	}

	t.Run("clear one", func(t *testing.T) {
		warm()
		require.NoError(t, c.ClearOne(ctx, "247540"))
		stats := c.Stats(ctx)
		assert.Equal(t, 1, stats.SeriesSize)
		assert.Equal(t, 1, stats.IndexSize)
	})

	t.Run("clear codes and indices", func(t *testing.T) {
		warm()
		require.NoError(t, c.ClearCodes(ctx, "005930", "247540"))
		require.NoError(t, c.ClearIndices(ctx))
		stats := c.Stats(ctx)
		assert.Equal(t, 0, stats.SeriesSize)
		assert.Equal(t, 0, stats.IndexSize)
	})

	t.Run("clear all", func(t *testing.T) {
		warm()
		require.NoError(t, c.ClearAll(ctx))
		stats := c.Stats(ctx)
		assert.Equal(t, 0, stats.SeriesSize+stats.IndexSize)
	})
}
