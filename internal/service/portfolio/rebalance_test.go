package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

func TestRebalance(t *testing.T) {
	current := []portfolio.AllocationItem{
		{StockCode: "A", StockName: "에이", Weight: 40},
		{StockCode: "B", StockName: "비", Weight: 35},
		{StockCode: "CASH", StockName: portfolio.CashName, Weight: 25},
	}

	t.Run("buy sell hold", func(t *testing.T) {
		targets := []portfolio.TargetWeight{
			{StockCode: "A", TargetWeight: 30},
			{StockCode: "B", TargetWeight: 36},
			{StockCode: "C", TargetWeight: 24},
			{StockCode: "CASH", TargetWeight: 10},
		}

		got := Rebalance(current, targets, 10_000_000)
		require.Len(t, got, 4)

		a := got[0]
		assert.Equal(t, portfolio.RebalanceSell, a.Action)
		assert.Equal(t, -10.0, a.Diff)
		assert.Equal(t, 1_000_000.0, a.SuggestedAmount)
		assert.Equal(t, 3_000_000.0, a.TargetBalance)

		b := got[1]
		assert.Equal(t, portfolio.RebalanceHold, b.Action, "diff exactly +1.0 stays in dead band")
		assert.Equal(t, 1.0, b.Diff)
		assert.Equal(t, 0.0, b.SuggestedAmount)
		assert.Equal(t, 3_600_000.0, b.TargetBalance)

		c := got[2]
		assert.Equal(t, portfolio.RebalanceBuy, c.Action)
		assert.Equal(t, "C", c.StockName, "name falls back to code")
		assert.Equal(t, 0.0, c.CurrentWeight)
		assert.Equal(t, 2_400_000.0, c.SuggestedAmount)

		assert.Equal(t, portfolio.RebalanceSell, got[3].Action)
	})

	t.Run("targets summing to 100 with one +1.0 gap", func(t *testing.T) {
		cur := []portfolio.AllocationItem{
			{StockCode: "A", Weight: 50},
			{StockCode: "B", Weight: 29},
			{StockCode: "C", Weight: 21},
		}
		targets := []portfolio.TargetWeight{
			{StockCode: "A", TargetWeight: 50},
			{StockCode: "B", TargetWeight: 30},
			{StockCode: "C", TargetWeight: 20},
		}

		got := Rebalance(cur, targets, 1_000_000)
		for _, r := range got {
			assert.Equal(t, portfolio.RebalanceHold, r.Action, r.StockCode)
		}
	})

	t.Run("hold never suggests an amount", func(t *testing.T) {
		for _, w := range []float64{38.01, 39.0, 39.5, 40, 40.99, 41.0} {
			got := Rebalance(current, []portfolio.TargetWeight{{StockCode: "A", TargetWeight: w}}, 123_456_789)
			if got[0].Action == portfolio.RebalanceHold {
				assert.Zero(t, got[0].SuggestedAmount, "target %.2f", w)
			}
		}
	})

	t.Run("rounds amounts", func(t *testing.T) {
		got := Rebalance(nil, []portfolio.TargetWeight{{StockCode: "A", TargetWeight: 33.3}}, 1001)
		assert.Equal(t, 333.0, got[0].SuggestedAmount)
		assert.Equal(t, 333.0, got[0].TargetBalance)
	})
}
