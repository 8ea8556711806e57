package price

import "time"

// PricePoint represents one daily bar
// 시리즈는 항상 최신순 (index 0 = 가장 최근)
type PricePoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Closes returns close prices in series order (newest first)
func Closes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Close
	}
	return out
}

// Volumes returns volumes in series order (newest first)
func Volumes(series []PricePoint) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Volume
	}
	return out
}

// IndexSnapshot represents an index quote at fetch time
// 모든 값은 조회 시점에 소수 둘째 자리로 반올림됨
type IndexSnapshot struct {
	Symbol    string    `json:"symbol"`
	Current   float64   `json:"current"`
	Prev      float64   `json:"prev"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"changePct"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// ChangePercent returns (cur-prev)/prev*100, 0 when prev is 0
func ChangePercent(current, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (current - prev) / prev * 100
}

// Index symbols used by the market regime classifier
const (
	SymbolKOSPI  = "^KS11"
	SymbolNASDAQ = "^IXIC"
	SymbolSP500  = "^GSPC"
	SymbolVIX    = "^VIX"
)

// IndexSymbols lists every index snapshot the regime classifier reads
var IndexSymbols = []string{SymbolKOSPI, SymbolNASDAQ, SymbolSP500, SymbolVIX}
