// Package market classifies the overall market regime from index snapshots.
package market

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
	"github.com/nkjh2020/investment-manager/internal/domain/signals"
)

// 국면 판단 임계값
const (
	RiskSP500DropPct = -5.0 // S&P500 등락률 이하면 RISK
	RiskVIXLevel     = 30.0 // VIX 초과면 RISK
	BullMinChangePct = 1.0  // KOSPI, S&P500 등락률 이상이면 BULL 후보
	BullMaxVIXLevel  = 20.0 // VIX 미만이어야 BULL

	CrashDay1Pct = 30
	CrashDay3Pct = 40
	CrashDay7Pct = 30
)

// SnapshotSource provides cached index snapshots (nil = unavailable)
type SnapshotSource interface {
	GetIndexSnapshot(ctx context.Context, symbol string) (*price.IndexSnapshot, error)
}

// Classifier determines BULL / NEUTRAL / RISK
type Classifier struct {
	source SnapshotSource
}

// NewClassifier creates a new regime classifier
func NewClassifier(source SnapshotSource) *Classifier {
	return &Classifier{source: source}
}

// Snapshots 국면 판단 입력 (조회 실패 시 nil)
type Snapshots struct {
	Kospi  *price.IndexSnapshot
	Nasdaq *price.IndexSnapshot
	SP500  *price.IndexSnapshot
	VIX    *price.IndexSnapshot
}

// Classify fetches the four index snapshots concurrently and decides the regime.
// A failed fetch leaves that index nil without failing the others.
// Decides from whatever arrived; ErrRegimeUnavailable only when no snapshot did.
func (c *Classifier) Classify(ctx context.Context) (signals.MarketStatus, error) {
	var (
		wg   sync.WaitGroup
		snap Snapshots
	)

	targets := []struct {
		symbol string
		dst    **price.IndexSnapshot
	}{
		{price.SymbolKOSPI, &snap.Kospi},
		{price.SymbolNASDAQ, &snap.Nasdaq},
		{price.SymbolSP500, &snap.SP500},
		{price.SymbolVIX, &snap.VIX},
	}

	for _, t := range targets {
		wg.Add(1)
		go func(symbol string, dst **price.IndexSnapshot) {
			defer wg.Done()
			s, err := c.source.GetIndexSnapshot(ctx, symbol)
			if err != nil {
				log.Warn().Err(err).Str("symbol", symbol).Msg("Index snapshot unavailable")
				return
			}
			*dst = s
		}(t.symbol, t.dst)
	}
	wg.Wait()

	if snap.Kospi == nil && snap.Nasdaq == nil && snap.SP500 == nil && snap.VIX == nil {
		if err := ctx.Err(); err != nil {
			return signals.NeutralMarketStatus(), fmt.Errorf("%w: %v", signals.ErrRegimeUnavailable, err)
		}
		return signals.NeutralMarketStatus(), signals.ErrRegimeUnavailable
	}

	status := Decide(snap)

	log.Debug().
		Str("status", string(status.Status)).
		Bool("alert", status.Alert).
		Msg("Market regime classified")

	return status, nil
}

// Decide applies the regime rules in precedence order:
// 1. VIX or S&P500 missing → NEUTRAL
// 2. S&P500 ≤ -5% or VIX > 30 → RISK
// 3. KOSPI ≥ +1% and S&P500 ≥ +1% and VIX < 20 → BULL
// 4. NEUTRAL
func Decide(s Snapshots) signals.MarketStatus {
	status := signals.MarketStatus{
		Status:     signals.RegimeNeutral,
		Indicators: toIndicators(s),
	}

	if s.VIX == nil || s.SP500 == nil {
		return status
	}

	switch {
	case s.SP500.ChangePct <= RiskSP500DropPct || s.VIX.Current > RiskVIXLevel:
		status.Status = signals.RegimeRisk
		status.Alert = true
		status.CrashStrategy = crashStrategy(s.SP500, s.VIX)

	case s.Kospi != nil &&
		s.Kospi.ChangePct >= BullMinChangePct &&
		s.SP500.ChangePct >= BullMinChangePct &&
		s.VIX.Current < BullMaxVIXLevel:
		status.Status = signals.RegimeBull
	}

	return status
}

// crashStrategy builds the staged re-entry plan; S&P500 drop wins over VIX spike
func crashStrategy(sp500, vix *price.IndexSnapshot) *signals.CrashStrategy {
	cs := &signals.CrashStrategy{
		Day1Pct: CrashDay1Pct,
		Day3Pct: CrashDay3Pct,
		Day7Pct: CrashDay7Pct,
	}

	if sp500.ChangePct <= RiskSP500DropPct {
		cs.Trigger = signals.TriggerSP500Drop
		cs.Description = fmt.Sprintf("S&P500 %.1f%% 급락", sp500.ChangePct)
	} else {
		cs.Trigger = signals.TriggerVIXSpike
		cs.Description = fmt.Sprintf("VIX %.1f 급등", vix.Current)
	}
	return cs
}

func toIndicators(s Snapshots) signals.MarketIndicators {
	quote := func(snap *price.IndexSnapshot) *signals.IndexQuote {
		if snap == nil {
			return nil
		}
		return &signals.IndexQuote{Current: snap.Current, ChangePct: snap.ChangePct}
	}

	ind := signals.MarketIndicators{
		Kospi:  quote(s.Kospi),
		Nasdaq: quote(s.Nasdaq),
		SP500:  quote(s.SP500),
	}
	if s.VIX != nil {
		ind.VIX = &signals.VolatilityQuote{Current: s.VIX.Current}
	}
	return ind
}
