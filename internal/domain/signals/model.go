package signals

// ==============================================================================
// Indicators
// ==============================================================================

// Indicators 종목별 기술적 지표
// nil = 데이터 부족 (JSON null)
type Indicators struct {
	Price *float64 `json:"price"`
	MA20  *float64 `json:"ma20"`
	MA60  *float64 `json:"ma60"`
	MA120 *float64 `json:"ma120"`
	MA200 *float64 `json:"ma200"`
	RSI   *float64 `json:"rsi"`
	VO    *float64 `json:"vo"`
}

// IsEmpty reports whether no indicator could be computed
func (i Indicators) IsEmpty() bool {
	return i.Price == nil && i.MA20 == nil && i.MA60 == nil && i.MA120 == nil &&
		i.MA200 == nil && i.RSI == nil && i.VO == nil
}

// Score 신호 점수
// Trend [0,4], Momentum [-2,2], Volume [-1,1], Total = 합계 [-3,7]
type Score struct {
	Trend    int `json:"trend"`
	Momentum int `json:"momentum"`
	Volume   int `json:"volume"`
	Total    int `json:"total"`
}

// ==============================================================================
// Action
// ==============================================================================

// ActionType 매매 액션
type ActionType string

const (
	ActionStrongBuy ActionType = "STRONG_BUY"
	ActionBuy       ActionType = "BUY"
	ActionAdd       ActionType = "ADD"
	ActionHold      ActionType = "HOLD"
	ActionTrim      ActionType = "TRIM"
	ActionSell      ActionType = "SELL"
	ActionUnknown   ActionType = "UNKNOWN"
)

// Priority returns display priority (ascending = most urgent first)
func (a ActionType) Priority() int {
	switch a {
	case ActionSell:
		return 0
	case ActionTrim:
		return 1
	case ActionBuy:
		return 2
	case ActionStrongBuy:
		return 3
	case ActionAdd:
		return 4
	case ActionHold:
		return 5
	default:
		return 6
	}
}

// IsValid checks if action is a known value
func (a ActionType) IsValid() bool {
	switch a {
	case ActionStrongBuy, ActionBuy, ActionAdd, ActionHold, ActionTrim, ActionSell, ActionUnknown:
		return true
	default:
		return false
	}
}

// ==============================================================================
// Market regime
// ==============================================================================

// RegimeStatus 시장 국면
type RegimeStatus string

const (
	RegimeBull    RegimeStatus = "BULL"
	RegimeNeutral RegimeStatus = "NEUTRAL"
	RegimeRisk    RegimeStatus = "RISK"
)

// CrashTrigger identifies which threshold fired a RISK regime
type CrashTrigger string

const (
	TriggerSP500Drop CrashTrigger = "SP500_DROP"
	TriggerVIXSpike  CrashTrigger = "VIX_SPIKE"
)

// CrashStrategy 급락 시 분할 재진입 전략 (RISK일 때만 존재)
type CrashStrategy struct {
	Trigger     CrashTrigger `json:"trigger"`
	Description string       `json:"description"`
	Day1Pct     int          `json:"day1Pct"`
	Day3Pct     int          `json:"day3Pct"`
	Day7Pct     int          `json:"day7Pct"`
}

// IndexQuote 지수 시세 요약
type IndexQuote struct {
	Current   float64 `json:"current"`
	ChangePct float64 `json:"changePct"`
}

// VolatilityQuote VIX 시세 요약
type VolatilityQuote struct {
	Current float64 `json:"current"`
}

// MarketIndicators 국면 판단에 사용된 지수 (조회 실패 시 nil)
type MarketIndicators struct {
	Kospi  *IndexQuote      `json:"kospi"`
	Nasdaq *IndexQuote      `json:"nasdaq"`
	SP500  *IndexQuote      `json:"sp500"`
	VIX    *VolatilityQuote `json:"vix"`
}

// MarketStatus 시장 국면 판단 결과
type MarketStatus struct {
	Status        RegimeStatus     `json:"status"`
	Alert         bool             `json:"alert"`
	Indicators    MarketIndicators `json:"indicators"`
	CrashStrategy *CrashStrategy   `json:"crashStrategy"`
}

// NeutralMarketStatus is the degraded status used when the regime task fails
func NeutralMarketStatus() MarketStatus {
	return MarketStatus{Status: RegimeNeutral}
}

// ==============================================================================
// Signals
// ==============================================================================

// SignalResult 보유 종목별 신호
type SignalResult struct {
	StockCode     string     `json:"stockCode"`
	StockName     string     `json:"stockName"`
	Action        ActionType `json:"action"`
	Score         Score      `json:"score"`
	Indicators    Indicators `json:"indicators"`
	Reason        string     `json:"reason"`
	Suggestion    string     `json:"suggestion"`
	CurrentWeight float64    `json:"currentWeight"`
	ProfitRate    float64    `json:"profitRate"`
}

// SignalsResponse GET /api/signals 응답 본문
type SignalsResponse struct {
	MarketStatus MarketStatus   `json:"marketStatus"`
	Signals      []SignalResult `json:"signals"`
	UpdatedAt    string         `json:"updatedAt"` // RFC3339
	Cached       bool           `json:"cached"`
}
