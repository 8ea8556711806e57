package signals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
	"github.com/nkjh2020/investment-manager/internal/domain/price"
	"github.com/nkjh2020/investment-manager/internal/domain/signals"
	"github.com/nkjh2020/investment-manager/internal/infra/cache"
	"github.com/nkjh2020/investment-manager/internal/service/indicators"
	"github.com/nkjh2020/investment-manager/internal/service/marketdata"
	portfoliosvc "github.com/nkjh2020/investment-manager/internal/service/portfolio"
)

// RefreshScope controls what a forced refresh evicts from the price cache
type RefreshScope string

const (
	// RefreshHoldings clears only the requesting user's instruments and the index snapshots
	RefreshHoldings RefreshScope = "holdings"
	// RefreshAll clears the whole price cache
	RefreshAll RefreshScope = "all"

	DefaultSignalsTTL = 1 * time.Hour
)

// PriceCache is the subset of the price series cache the orchestrator uses
type PriceCache interface {
	GetDailySeries(ctx context.Context, code string) ([]price.PricePoint, error)
	ClearAll(ctx context.Context) error
	ClearCodes(ctx context.Context, codes ...string) error
	ClearIndices(ctx context.Context) error
	Stats(ctx context.Context) marketdata.CacheStats
}

// RegimeClassifier computes the market status
type RegimeClassifier interface {
	Classify(ctx context.Context) (signals.MarketStatus, error)
}

// TargetSource returns stored target weights keyed by instrument code
type TargetSource interface {
	TargetWeights(ctx context.Context, userID string) (map[string]float64, error)
}

// Config configures the orchestrator
type Config struct {
	SignalsTTL   time.Duration
	RefreshScope RefreshScope
	MaxFanout    int // 0 = unlimited
	Now          func() time.Time
}

// Orchestrator builds the per-user signals response
// CACHE_CHECK → (HIT) | FETCH_HOLDINGS → FANOUT_COMPUTE → ASSEMBLE → CACHE_STORE
type Orchestrator struct {
	holdings portfolio.HoldingsProvider
	prices   PriceCache
	regime   RegimeClassifier
	targets  TargetSource // optional
	scorer   *Scorer
	results  cache.Store[signals.SignalsResponse]

	ttl       time.Duration
	scope     RefreshScope
	maxFanout int
	now       func() time.Time
}

// NewOrchestrator creates a new orchestrator. targets may be nil.
func NewOrchestrator(
	holdings portfolio.HoldingsProvider,
	prices PriceCache,
	regime RegimeClassifier,
	targets TargetSource,
	results cache.Store[signals.SignalsResponse],
	cfg Config,
) *Orchestrator {
	if cfg.SignalsTTL <= 0 {
		cfg.SignalsTTL = DefaultSignalsTTL
	}
	if cfg.RefreshScope == "" {
		cfg.RefreshScope = RefreshHoldings
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Orchestrator{
		holdings:  holdings,
		prices:    prices,
		regime:    regime,
		targets:   targets,
		scorer:    NewScorer(),
		results:   results,
		ttl:       cfg.SignalsTTL,
		scope:     cfg.RefreshScope,
		maxFanout: cfg.MaxFanout,
		now:       cfg.Now,
	}
}

// GetSignals returns the user's signals, from cache unless forceRefresh.
// A holdings failure is returned wrapping portfolio.ErrHoldingsUnavailable.
// A context that ends during the fan-out returns ctx.Err() and stores nothing.
func (o *Orchestrator) GetSignals(ctx context.Context, userID string, forceRefresh bool) (*signals.SignalsResponse, error) {
	if userID == "" {
		return nil, signals.ErrUserRequired
	}

	// 1. CACHE_CHECK
	if forceRefresh {
		if err := o.results.Delete(ctx, userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to evict signals cache")
		}
		if o.scope == RefreshAll {
			o.clearPrices(ctx, func(ctx context.Context) error { return o.prices.ClearAll(ctx) })
		}
	} else if resp, ok := o.cached(ctx, userID); ok {
		return resp, nil
	}

	// 2. FETCH_HOLDINGS
	bal, err := o.holdings.GetBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch holdings: %w", asHoldingsError(err))
	}

	merged := portfoliosvc.MergeByInstrument(bal.Holdings)
	weights := portfoliosvc.Allocation(merged, true, bal.Summary.TotalDeposit)

	if forceRefresh && o.scope == RefreshHoldings {
		codes := make([]string, len(merged))
		for i, h := range merged {
			codes[i] = h.StockCode
		}
		o.clearPrices(ctx, func(ctx context.Context) error {
			if err := o.prices.ClearCodes(ctx, codes...); err != nil {
				return err
			}
			return o.prices.ClearIndices(ctx)
		})
	}

	targetWeights := o.loadTargets(ctx, userID)

	// 3. FANOUT_COMPUTE
	market, results := o.fanOut(ctx, merged, weights, targetWeights)

	// 호출자가 떠난 경우 degrade된 결과는 캐시하지 않는다
	if err := ctx.Err(); err != nil {
		log.Debug().Err(err).Str("user_id", userID).Msg("Signals request ended before compute finished")
		return nil, fmt.Errorf("compute signals: %w", err)
	}

	// 4. ASSEMBLE
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Action.Priority() < results[j].Action.Priority()
	})

	resp := signals.SignalsResponse{
		MarketStatus: market,
		Signals:      results,
		UpdatedAt:    o.now().UTC().Format(time.RFC3339),
		Cached:       false,
	}

	// 5. CACHE_STORE
	if err := o.results.Set(ctx, userID, resp, o.ttl); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to store signals cache")
	}

	log.Info().
		Str("user_id", userID).
		Int("holdings", len(results)).
		Str("market", string(market.Status)).
		Bool("forced", forceRefresh).
		Msg("Signals computed")

	return &resp, nil
}

func (o *Orchestrator) cached(ctx context.Context, userID string) (*signals.SignalsResponse, bool) {
	entry, ok, err := o.results.Get(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Signals cache read failed")
		return nil, false
	}
	if !ok || entry.Expired(o.now()) {
		return nil, false
	}

	resp := entry.Value
	resp.Cached = true
	return &resp, true
}

func (o *Orchestrator) clearPrices(ctx context.Context, clear func(context.Context) error) {
	if err := clear(ctx); err != nil {
		log.Warn().Err(err).Str("scope", string(o.scope)).Msg("Failed to invalidate price cache")
		return
	}

	stats := o.prices.Stats(ctx)
	log.Info().
		Str("scope", string(o.scope)).
		Int("series_size", stats.SeriesSize).
		Int("index_size", stats.IndexSize).
		Int64("hits", stats.Hits).
		Int64("misses", stats.Misses).
		Int64("stale_served", stats.StaleServed).
		Msg("Price cache invalidated")
}

func (o *Orchestrator) loadTargets(ctx context.Context, userID string) map[string]float64 {
	if o.targets == nil {
		return nil
	}
	tw, err := o.targets.TargetWeights(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Target weights unavailable, scoring without them")
		return nil
	}
	return tw
}

// fanOut runs the regime task and one task per holding together.
// Tasks never return errors; each one records its own degraded result.
func (o *Orchestrator) fanOut(
	ctx context.Context,
	holdings []portfolio.Holding,
	weights []portfolio.AllocationItem,
	targets map[string]float64,
) (signals.MarketStatus, []signals.SignalResult) {
	var g errgroup.Group
	if o.maxFanout > 0 {
		g.SetLimit(o.maxFanout)
	}

	market := signals.NeutralMarketStatus()
	results := make([]signals.SignalResult, len(holdings))

	g.Go(func() error {
		market = o.computeRegime(ctx)
		return nil
	})

	for i, h := range holdings {
		weight, _ := portfoliosvc.WeightOf(weights, h.StockCode)

		var target *float64
		if tw, ok := targets[h.StockCode]; ok {
			target = &tw
		}

		g.Go(func() error {
			results[i] = o.computeHolding(ctx, h, weight, target)
			return nil
		})
	}

	_ = g.Wait()
	return market, results
}

func (o *Orchestrator) computeRegime(ctx context.Context) (status signals.MarketStatus) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Regime task panicked, using NEUTRAL")
			status = signals.NeutralMarketStatus()
		}
	}()

	status, err := o.regime.Classify(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Regime task failed, using NEUTRAL")
		return signals.NeutralMarketStatus()
	}
	return status
}

func (o *Orchestrator) computeHolding(ctx context.Context, h portfolio.Holding, weight float64, target *float64) (result signals.SignalResult) {
	currentWeight := round1(weight)
	profitRate := round1(h.EvalProfitRate)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("code", h.StockCode).Msg("Signal task panicked")
			result = unknownResult(h, currentWeight, profitRate)
		}
	}()

	series, err := o.prices.GetDailySeries(ctx, h.StockCode)
	if err != nil {
		log.Warn().Err(err).Str("code", h.StockCode).Msg("Signal task failed")
		return unknownResult(h, currentWeight, profitRate)
	}

	ind := indicators.ComputeAll(series)
	res := o.scorer.Score(ind, HoldingContext{CurrentWeight: &weight, TargetWeight: target})

	return signals.SignalResult{
		StockCode:     h.StockCode,
		StockName:     h.StockName,
		Action:        res.Action,
		Score:         res.Score,
		Indicators:    ind,
		Reason:        res.Reason,
		Suggestion:    res.Suggestion,
		CurrentWeight: currentWeight,
		ProfitRate:    profitRate,
	}
}

func unknownResult(h portfolio.Holding, currentWeight, profitRate float64) signals.SignalResult {
	return signals.SignalResult{
		StockCode:     h.StockCode,
		StockName:     h.StockName,
		Action:        signals.ActionUnknown,
		Reason:        ReasonFetchFailed,
		Suggestion:    SuggestionRetryLater,
		CurrentWeight: currentWeight,
		ProfitRate:    profitRate,
	}
}

// asHoldingsError makes sure the error chain carries ErrHoldingsUnavailable
func asHoldingsError(err error) error {
	if errors.Is(err, portfolio.ErrHoldingsUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", portfolio.ErrHoldingsUnavailable, err)
}

func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
