package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

type stubHoldings struct {
	balance *portfolio.Balance
	err     error
}

func (s stubHoldings) GetBalance(context.Context, string) (*portfolio.Balance, error) {
	return s.balance, s.err
}

func testBalance() *portfolio.Balance {
	return &portfolio.Balance{
		Holdings: []portfolio.Holding{
			{StockCode: "005930", StockName: "삼성전자", EvalAmount: 4_000_000, AccountID: "a"},
			{StockCode: "005930", StockName: "삼성전자", EvalAmount: 1_000_000, AccountID: "b"},
			{StockCode: "000660", StockName: "SK하이닉스", EvalAmount: 3_000_000, AccountID: "a"},
		},
		Summary: portfolio.AccountSummary{TotalDeposit: 2_000_000},
	}
}

func TestService_Rebalance(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTargetRepository()
	svc := NewService(stubHoldings{balance: testBalance()}, repo)

	require.NoError(t, svc.SaveTargets(ctx, "u1", []portfolio.TargetWeight{
		{StockCode: "005930", TargetWeight: 40},
		{StockCode: "000660", TargetWeight: 40},
		{StockCode: "CASH", TargetWeight: 20},
	}))

	plan, err := svc.Rebalance(ctx, "u1")
	require.NoError(t, err)

	assert.Equal(t, 10_000_000.0, plan.TotalAssetValue)
	assert.Equal(t, 100.0, plan.TotalTargetWeight)
	require.Len(t, plan.Targets, 3)

	assert.Equal(t, "삼성전자", plan.Targets[0].StockName)
	assert.InDelta(t, 50.0, plan.Targets[0].CurrentWeight, 1e-9)
	assert.Equal(t, portfolio.RebalanceSell, plan.Targets[0].Action)
	assert.Equal(t, 1_000_000.0, plan.Targets[0].SuggestedAmount)

	assert.Equal(t, portfolio.RebalanceBuy, plan.Targets[1].Action)
	assert.Equal(t, portfolio.RebalanceHold, plan.Targets[2].Action)

	t.Run("other user has no targets", func(t *testing.T) {
		plan, err := svc.Rebalance(ctx, "u2")
		require.NoError(t, err)
		assert.Empty(t, plan.Targets)
	})
}

func TestService_HoldingsFailure(t *testing.T) {
	svc := NewService(stubHoldings{err: portfolio.ErrHoldingsUnavailable}, NewMemoryTargetRepository())

	_, err := svc.Allocation(context.Background(), "u1", true)
	assert.True(t, errors.Is(err, portfolio.ErrHoldingsUnavailable))
}

func TestService_AllocationAndAssetTypes(t *testing.T) {
	ctx := context.Background()
	svc := NewService(stubHoldings{balance: testBalance()}, NewMemoryTargetRepository())

	items, err := svc.Allocation(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.InDelta(t, 62.5, items[0].Weight, 1e-9)

	types, err := svc.AssetTypes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, types, 2)
	assert.Equal(t, portfolio.AssetStock, types[0].Type)
}

func TestValidateTargets(t *testing.T) {
	tests := []struct {
		name    string
		targets []portfolio.TargetWeight
		wantErr bool
	}{
		{"empty is fine", nil, false},
		{"sum 100", []portfolio.TargetWeight{{StockCode: "A", TargetWeight: 60}, {StockCode: "B", TargetWeight: 40}}, false},
		{"sum below 100", []portfolio.TargetWeight{{StockCode: "A", TargetWeight: 60}}, false},
		{"sum over 100", []portfolio.TargetWeight{{StockCode: "A", TargetWeight: 60}, {StockCode: "B", TargetWeight: 41}}, true},
		{"negative", []portfolio.TargetWeight{{StockCode: "A", TargetWeight: -1}}, true},
		{"duplicate", []portfolio.TargetWeight{{StockCode: "A", TargetWeight: 10}, {StockCode: "A", TargetWeight: 10}}, true},
		{"empty code", []portfolio.TargetWeight{{TargetWeight: 10}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTargets(tt.targets)
			if tt.wantErr {
				assert.ErrorIs(t, err, portfolio.ErrInvalidTargets)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
