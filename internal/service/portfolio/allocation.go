// Package portfolio computes allocation weights and rebalancing deltas.
package portfolio

import (
	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

// MergeByInstrument 동일 종목코드를 계좌 구분 없이 합산
// 수량/매입금액/평가금액/평가손익 합산, 평균단가와 수익률은 합계로 재계산
// 최초 등장 순서 유지
func MergeByInstrument(holdings []portfolio.Holding) []portfolio.Holding {
	merged := make([]portfolio.Holding, 0, len(holdings))
	index := make(map[string]int, len(holdings))

	for _, h := range holdings {
		i, exists := index[h.StockCode]
		if !exists {
			index[h.StockCode] = len(merged)
			merged = append(merged, h)
			continue
		}

		m := &merged[i]
		m.Quantity += h.Quantity
		m.PurchaseAmount += h.PurchaseAmount
		m.EvalAmount += h.EvalAmount
		m.EvalProfit += h.EvalProfit
		m.CurrentPrice = h.CurrentPrice // 동일 종목이므로 현재가 동일
		m.AvgPrice = safeDiv(m.PurchaseAmount, m.Quantity)
		m.EvalProfitRate = safeDiv(m.EvalProfit, m.PurchaseAmount) * 100
		m.AccountID = portfolio.MergedAccountID
		m.AccountLabel = portfolio.MergedAccountLabel
	}

	return merged
}

// Allocation 종목별 비중 (%)
// weight = 평가금액 / (평가금액 합계 + 현금) * 100, 현금은 includeCash일 때만 분모에 포함
// includeCash && cash > 0 이면 CASH 항목 추가, 분모가 0이면 빈 결과
func Allocation(holdings []portfolio.Holding, includeCash bool, cashAmount float64) []portfolio.AllocationItem {
	merged := MergeByInstrument(holdings)

	if !includeCash || cashAmount < 0 {
		cashAmount = 0
	}

	total := cashAmount
	for _, h := range merged {
		total += h.EvalAmount
	}
	if total == 0 {
		return []portfolio.AllocationItem{}
	}

	items := make([]portfolio.AllocationItem, 0, len(merged)+1)
	for _, h := range merged {
		items = append(items, portfolio.AllocationItem{
			StockCode:  h.StockCode,
			StockName:  h.StockName,
			Weight:     h.EvalAmount / total * 100,
			EvalAmount: h.EvalAmount,
		})
	}

	if cashAmount > 0 {
		items = append(items, portfolio.AllocationItem{
			StockCode:  portfolio.CashCode,
			StockName:  portfolio.CashName,
			Weight:     cashAmount / total * 100,
			EvalAmount: cashAmount,
		})
	}

	return items
}

// WeightOf returns the weight of code in items, 0 when absent
func WeightOf(items []portfolio.AllocationItem, code string) (float64, bool) {
	for _, it := range items {
		if it.StockCode == code {
			return it.Weight, true
		}
	}
	return 0, false
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
