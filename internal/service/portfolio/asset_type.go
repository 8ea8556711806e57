package portfolio

import (
	"sort"
	"strings"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

var (
	bondKeywords = []string{"채권", "국채", "회사채", "단기사채", "통안채", "BOND", "금리", "국고채"}
	// ETF는 주식으로 분류 (채권/머니마켓 ETF는 위 키워드로 걸러짐)
	fundKeywords = []string{"펀드", "MMF", "CMA", "머니마켓", "RP형", "환매조건부"}
)

// ClassifyAssetType 종목명 키워드로 자산 유형 분류
func ClassifyAssetType(stockName string) portfolio.AssetType {
	name := strings.ToUpper(stockName)

	if containsAny(name, bondKeywords) {
		return portfolio.AssetBond
	}
	if containsAny(name, fundKeywords) {
		return portfolio.AssetFund
	}
	return portfolio.AssetStock
}

// AssetTypeAllocation 자산 유형별 비중 (예수금은 현금성자산)
// 금액 0인 유형은 제외, 비중 내림차순
func AssetTypeAllocation(holdings []portfolio.Holding, deposit float64) []portfolio.AssetTypeItem {
	order := []portfolio.AssetType{portfolio.AssetStock, portfolio.AssetBond, portfolio.AssetFund, portfolio.AssetCash}
	amounts := make(map[portfolio.AssetType]float64, len(order))

	for _, h := range holdings {
		amounts[ClassifyAssetType(h.StockName)] += h.EvalAmount
	}
	amounts[portfolio.AssetCash] += deposit

	var total float64
	for _, t := range order {
		total += amounts[t]
	}
	if total == 0 {
		return []portfolio.AssetTypeItem{}
	}

	items := make([]portfolio.AssetTypeItem, 0, len(order))
	for _, t := range order {
		amt := amounts[t]
		if amt <= 0 {
			continue
		}
		items = append(items, portfolio.AssetTypeItem{
			Type:   t,
			Label:  t.Label(),
			Amount: amt,
			Weight: amt / total * 100,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Weight > items[j].Weight
	})
	return items
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
