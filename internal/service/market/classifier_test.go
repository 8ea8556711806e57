package market

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
	"github.com/nkjh2020/investment-manager/internal/domain/signals"
)

func idx(changePct float64) *price.IndexSnapshot {
	return &price.IndexSnapshot{Current: 1000, ChangePct: changePct}
}

func vix(level float64) *price.IndexSnapshot {
	return &price.IndexSnapshot{Current: level}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		in      Snapshots
		want    signals.RegimeStatus
		trigger signals.CrashTrigger
	}{
		{"vix missing", Snapshots{Kospi: idx(2), SP500: idx(-8)}, signals.RegimeNeutral, ""},
		{"sp500 missing", Snapshots{Kospi: idx(2), VIX: vix(45)}, signals.RegimeNeutral, ""},
		{"sp500 crash", Snapshots{SP500: idx(-5), VIX: vix(25)}, signals.RegimeRisk, signals.TriggerSP500Drop},
		{"vix spike", Snapshots{SP500: idx(-2), VIX: vix(30.1)}, signals.RegimeRisk, signals.TriggerVIXSpike},
		{"both fire, drop wins", Snapshots{SP500: idx(-6.2), VIX: vix(41)}, signals.RegimeRisk, signals.TriggerSP500Drop},
		{"vix exactly 30 is not risk", Snapshots{SP500: idx(0), VIX: vix(30)}, signals.RegimeNeutral, ""},
		{"bull", Snapshots{Kospi: idx(1), SP500: idx(1.5), Nasdaq: idx(-3), VIX: vix(15)}, signals.RegimeBull, ""},
		{"bull needs kospi", Snapshots{SP500: idx(1.5), VIX: vix(15)}, signals.RegimeNeutral, ""},
		{"bull needs calm vix", Snapshots{Kospi: idx(2), SP500: idx(2), VIX: vix(20)}, signals.RegimeNeutral, ""},
		{"kospi up alone", Snapshots{Kospi: idx(2), SP500: idx(0.5), VIX: vix(12)}, signals.RegimeNeutral, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.in)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.want == signals.RegimeRisk, got.Alert)

			if tt.trigger == "" {
				assert.Nil(t, got.CrashStrategy)
				return
			}
			require.NotNil(t, got.CrashStrategy)
			assert.Equal(t, tt.trigger, got.CrashStrategy.Trigger)
			assert.Equal(t, 30, got.CrashStrategy.Day1Pct)
			assert.Equal(t, 40, got.CrashStrategy.Day3Pct)
			assert.Equal(t, 30, got.CrashStrategy.Day7Pct)
		})
	}
}

func TestDecide_Description(t *testing.T) {
	got := Decide(Snapshots{SP500: idx(-5.46), VIX: vix(33)})
	require.NotNil(t, got.CrashStrategy)
	assert.Equal(t, "S&P500 -5.5% 급락", got.CrashStrategy.Description)

	got = Decide(Snapshots{SP500: idx(-1), VIX: vix(35.26)})
	require.NotNil(t, got.CrashStrategy)
	assert.Equal(t, "VIX 35.3 급등", got.CrashStrategy.Description)
}

type stubSource map[string]*price.IndexSnapshot

func (s stubSource) GetIndexSnapshot(_ context.Context, symbol string) (*price.IndexSnapshot, error) {
	if symbol == price.SymbolNASDAQ {
		return nil, errors.New("boom")
	}
	return s[symbol], nil
}

func TestClassify_IsolatesFailures(t *testing.T) {
	src := stubSource{
		price.SymbolKOSPI: idx(1.2),
		price.SymbolSP500: idx(1.1),
		price.SymbolVIX:   vix(14),
	}

	status, err := NewClassifier(src).Classify(context.Background())
	require.NoError(t, err)

	assert.Equal(t, signals.RegimeBull, status.Status)
	assert.Nil(t, status.Indicators.Nasdaq)
	require.NotNil(t, status.Indicators.Kospi)
	assert.Equal(t, 1.2, status.Indicators.Kospi.ChangePct)
	require.NotNil(t, status.Indicators.VIX)
	assert.Equal(t, 14.0, status.Indicators.VIX.Current)
}

func TestClassify_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := NewClassifier(stubSource{}).Classify(ctx)
	assert.ErrorIs(t, err, signals.ErrRegimeUnavailable)
	assert.Equal(t, signals.RegimeNeutral, status.Status)
	assert.False(t, status.Alert)
}

func TestClassify_CancelledContextKeepsArrivedSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := stubSource{
		price.SymbolKOSPI: idx(0.3),
		price.SymbolSP500: idx(-6),
		price.SymbolVIX:   vix(25),
	}

	status, err := NewClassifier(src).Classify(ctx)
	require.NoError(t, err)
	assert.Equal(t, signals.RegimeRisk, status.Status)
	assert.True(t, status.Alert)
	require.NotNil(t, status.Indicators.SP500)
	assert.Equal(t, -6.0, status.Indicators.SP500.ChangePct)
}

func TestClassify_NoSnapshots(t *testing.T) {
	status, err := NewClassifier(stubSource{}).Classify(context.Background())
	assert.ErrorIs(t, err, signals.ErrRegimeUnavailable)
	assert.Equal(t, signals.RegimeNeutral, status.Status)
}
