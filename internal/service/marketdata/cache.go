package marketdata

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
	"github.com/nkjh2020/investment-manager/internal/infra/cache"
)

// ==============================================================================
// PriceSeriesCache - 일봉/지수 조회 캐시 (stale fallback)
// ==============================================================================

const (
	DefaultDailyTTL     = 24 * time.Hour
	DefaultIndexTTL     = 1 * time.Hour
	DefaultFetchTimeout = 5 * time.Second
)

// Config configures a PriceSeriesCache
type Config struct {
	DailyTTL     time.Duration
	IndexTTL     time.Duration
	FetchTimeout time.Duration
	Now          func() time.Time // nil = time.Now
}

// PriceSeriesCache serves daily series and index snapshots through a TTL cache.
// Upstream failures never surface as errors: the last cached value (even if
// expired) is served, or an empty series / nil snapshot when nothing is cached.
type PriceSeriesCache struct {
	provider price.Provider
	series   cache.Store[[]price.PricePoint]
	indices  cache.Store[price.IndexSnapshot]

	dailyTTL     time.Duration
	indexTTL     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	group singleflight.Group

	// Metrics
	hits        atomic.Int64
	misses      atomic.Int64
	staleServed atomic.Int64
}

// NewPriceSeriesCache creates a new cache
func NewPriceSeriesCache(
	provider price.Provider,
	series cache.Store[[]price.PricePoint],
	indices cache.Store[price.IndexSnapshot],
	cfg Config,
) *PriceSeriesCache {
	if cfg.DailyTTL <= 0 {
		cfg.DailyTTL = DefaultDailyTTL
	}
	if cfg.IndexTTL <= 0 {
		cfg.IndexTTL = DefaultIndexTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &PriceSeriesCache{
		provider:     provider,
		series:       series,
		indices:      indices,
		dailyTTL:     cfg.DailyTTL,
		indexTTL:     cfg.IndexTTL,
		fetchTimeout: cfg.FetchTimeout,
		now:          cfg.Now,
	}
}

// ==============================================================================
// Public API
// ==============================================================================

// GetDailySeries returns ~1y of daily bars for an instrument code, newest first.
// Returns an error only when ctx is done and nothing is cached.
func (c *PriceSeriesCache) GetDailySeries(ctx context.Context, code string) ([]price.PricePoint, error) {
	symbol := ToProviderSymbol(code)

	entry, cached := c.lookupSeries(ctx, symbol)
	if cached && !entry.Expired(c.now()) {
		c.hits.Add(1)
		return entry.Value, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan("series:"+symbol, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		series, err := c.provider.FetchDailySeries(fctx, symbol)
		if err != nil {
			return nil, err
		}
		if err := c.series.Set(fctx, symbol, series, c.dailyTTL); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to store daily series")
		}
		return series, nil
	})

	select {
	case res := <-ch:
		if res.Err == nil {
			return res.Val.([]price.PricePoint), nil
		}
		if cached {
			c.staleServed.Add(1)
			log.Warn().Err(res.Err).Str("symbol", symbol).Msg("Daily series fetch failed, serving stale cache")
			return entry.Value, nil
		}
		log.Error().Err(res.Err).Str("symbol", symbol).Msg("Daily series fetch failed, no cache")
		return []price.PricePoint{}, nil

	case <-ctx.Done():
		if cached {
			c.staleServed.Add(1)
			return entry.Value, nil
		}
		return nil, ctx.Err()
	}
}

// GetIndexSnapshot returns the latest snapshot for an index symbol (e.g. ^GSPC).
// nil means unavailable. Returns an error only when ctx is done and nothing is cached.
func (c *PriceSeriesCache) GetIndexSnapshot(ctx context.Context, symbol string) (*price.IndexSnapshot, error) {
	entry, cached := c.lookupIndex(ctx, symbol)
	if cached && !entry.Expired(c.now()) {
		c.hits.Add(1)
		snap := entry.Value
		return &snap, nil
	}
	c.misses.Add(1)

	ch := c.group.DoChan("index:"+symbol, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		snap, err := c.provider.FetchIndexSnapshot(fctx, symbol)
		if err != nil {
			return nil, err
		}
		if err := c.indices.Set(fctx, symbol, *snap, c.indexTTL); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to store index snapshot")
		}
		return *snap, nil
	})

	select {
	case res := <-ch:
		if res.Err == nil {
			snap := res.Val.(price.IndexSnapshot)
			return &snap, nil
		}
		if cached {
			c.staleServed.Add(1)
			log.Warn().Err(res.Err).Str("symbol", symbol).Msg("Index fetch failed, serving stale cache")
			snap := entry.Value
			return &snap, nil
		}
		log.Error().Err(res.Err).Str("symbol", symbol).Msg("Index fetch failed, no cache")
		return nil, nil

	case <-ctx.Done():
		if cached {
			c.staleServed.Add(1)
			snap := entry.Value
			return &snap, nil
		}
		return nil, ctx.Err()
	}
}

// ClearAll evicts every daily series and index snapshot
func (c *PriceSeriesCache) ClearAll(ctx context.Context) error {
	if err := c.series.Clear(ctx); err != nil {
		return err
	}
	return c.indices.Clear(ctx)
}

// ClearOne evicts the daily series of one instrument code
func (c *PriceSeriesCache) ClearOne(ctx context.Context, code string) error {
	return c.series.Delete(ctx, ToProviderSymbol(code))
}

// ClearCodes evicts the daily series of the given instrument codes
func (c *PriceSeriesCache) ClearCodes(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	symbols := make([]string, len(codes))
	for i, code := range codes {
		symbols[i] = ToProviderSymbol(code)
	}
	return c.series.Delete(ctx, symbols...)
}

// ClearIndices evicts every index snapshot
func (c *PriceSeriesCache) ClearIndices(ctx context.Context) error {
	return c.indices.Clear(ctx)
}

// CacheStats holds cache statistics
type CacheStats struct {
	SeriesSize  int     `json:"series_size"`
	IndexSize   int     `json:"index_size"`
	Hits        int64   `json:"hits"`
	Misses      int64   `json:"misses"`
	StaleServed int64   `json:"stale_served"`
	HitRate     float64 `json:"hit_rate"` // percentage
}

// Stats returns cache statistics
func (c *PriceSeriesCache) Stats(ctx context.Context) CacheStats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	seriesSize, _ := c.series.Len(ctx)
	indexSize, _ := c.indices.Len(ctx)

	return CacheStats{
		SeriesSize:  seriesSize,
		IndexSize:   indexSize,
		Hits:        hits,
		Misses:      misses,
		StaleServed: c.staleServed.Load(),
		HitRate:     hitRate,
	}
}

// ==============================================================================
// Internal Methods
// ==============================================================================

// store errors are treated as misses
func (c *PriceSeriesCache) lookupSeries(ctx context.Context, symbol string) (cache.Entry[[]price.PricePoint], bool) {
	entry, ok, err := c.series.Get(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("Series cache read failed")
		return entry, false
	}
	return entry, ok
}

func (c *PriceSeriesCache) lookupIndex(ctx context.Context, symbol string) (cache.Entry[price.IndexSnapshot], bool) {
	entry, ok, err := c.indices.Get(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("Index cache read failed")
		return entry, false
	}
	return entry, ok
}
