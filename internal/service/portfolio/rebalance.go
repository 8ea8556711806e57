package portfolio

import (
	"math"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

// RebalanceDeadBand ±1%p 이내는 HOLD (경계값 제외: diff > 1 이어야 BUY)
const RebalanceDeadBand = 1.0

// Rebalance 목표 비중 대비 현재 비중 차이로 매수/매도 금액 계산
func Rebalance(current []portfolio.AllocationItem, targets []portfolio.TargetWeight, totalAssetValue float64) []portfolio.RebalanceTarget {
	byCode := make(map[string]portfolio.AllocationItem, len(current))
	for _, item := range current {
		byCode[item.StockCode] = item
	}

	result := make([]portfolio.RebalanceTarget, 0, len(targets))
	for _, t := range targets {
		cur, found := byCode[t.StockCode]

		name := t.StockCode
		if found && cur.StockName != "" {
			name = cur.StockName
		}

		diff := t.TargetWeight - cur.Weight

		action := portfolio.RebalanceHold
		switch {
		case diff > RebalanceDeadBand:
			action = portfolio.RebalanceBuy
		case diff < -RebalanceDeadBand:
			action = portfolio.RebalanceSell
		}

		var suggested float64
		if action != portfolio.RebalanceHold {
			suggested = math.Round(math.Abs(diff / 100 * totalAssetValue))
		}

		result = append(result, portfolio.RebalanceTarget{
			StockCode:       t.StockCode,
			StockName:       name,
			CurrentWeight:   cur.Weight,
			TargetWeight:    t.TargetWeight,
			Diff:            diff,
			Action:          action,
			SuggestedAmount: suggested,
			TargetBalance:   math.Round(totalAssetValue * t.TargetWeight / 100),
		})
	}

	return result
}
