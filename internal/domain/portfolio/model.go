package portfolio

// CashCode 현금 항목의 합성 종목코드
const CashCode = "CASH"

// CashName 현금 항목 표시명
const CashName = "현금성자산"

// 계좌 병합된 보유 종목의 AccountID / AccountLabel
const (
	MergedAccountID    = "merged"
	MergedAccountLabel = "통합"
)

// Holding 보유 종목 (계좌별)
type Holding struct {
	StockCode      string  `json:"stockCode"`
	StockName      string  `json:"stockName"`
	Quantity       float64 `json:"quantity"`
	AvgPrice       float64 `json:"avgPrice"`
	CurrentPrice   float64 `json:"currentPrice"`
	PurchaseAmount float64 `json:"purchaseAmount"` // 매입금액 (cost)
	EvalAmount     float64 `json:"evalAmount"`     // 평가금액
	EvalProfit     float64 `json:"evalProfit"`     // 평가손익
	EvalProfitRate float64 `json:"evalProfitRate"` // 수익률 (%)
	AccountID      string  `json:"accountId"`
	AccountLabel   string  `json:"accountLabel,omitempty"`
}

// AccountSummary 계좌 요약 (예수금, 평가 합계)
type AccountSummary struct {
	TotalDeposit        float64 `json:"totalDeposit"` // 예수금
	TotalEvaluation     float64 `json:"totalEvaluation"`
	TotalPurchaseAmount float64 `json:"totalPurchaseAmount"`
	TotalEvalProfit     float64 `json:"totalEvalProfit"`
	TotalEvalProfitRate float64 `json:"totalEvalProfitRate"`
	D1Deposit           float64 `json:"d1Deposit"`
	D2Deposit           float64 `json:"d2Deposit"`
	TodayBuyAmount      float64 `json:"todayBuyAmount"`
	TodaySellAmount     float64 `json:"todaySellAmount"`
	AccountID           string  `json:"accountId,omitempty"`
	AccountLabel        string  `json:"accountLabel,omitempty"`
}

// AccountBalance 계좌 하나의 조회 결과
// Error가 비어있지 않으면 해당 계좌 조회 실패 (다른 계좌는 정상)
type AccountBalance struct {
	AccountID    string         `json:"accountId"`
	AccountLabel string         `json:"accountLabel"`
	Holdings     []Holding      `json:"holdings"`
	Summary      AccountSummary `json:"summary"`
	Error        string         `json:"error,omitempty"`
}

// Balance 사용자 전체 잔고 (계좌별 + 병합 요약)
type Balance struct {
	Holdings []Holding        `json:"holdings"`
	Summary  AccountSummary   `json:"summary"`
	Accounts []AccountBalance `json:"accounts"`
}

// AllocationItem 종목별 비중
type AllocationItem struct {
	StockCode  string  `json:"stockCode"`
	StockName  string  `json:"stockName"`
	Weight     float64 `json:"weight"` // %
	EvalAmount float64 `json:"evalAmount"`
}

// TargetWeight 목표 비중 설정
type TargetWeight struct {
	StockCode    string  `json:"stockCode"`
	TargetWeight float64 `json:"targetWeight"` // %
}

// RebalanceAction 리밸런싱 액션
type RebalanceAction string

const (
	RebalanceBuy  RebalanceAction = "BUY"
	RebalanceSell RebalanceAction = "SELL"
	RebalanceHold RebalanceAction = "HOLD"
)

// RebalanceTarget 종목별 리밸런싱 결과
type RebalanceTarget struct {
	StockCode       string          `json:"stockCode"`
	StockName       string          `json:"stockName"`
	CurrentWeight   float64         `json:"currentWeight"`
	TargetWeight    float64         `json:"targetWeight"`
	Diff            float64         `json:"diff"`
	Action          RebalanceAction `json:"action"`
	SuggestedAmount float64         `json:"suggestedAmount"`
	TargetBalance   float64         `json:"targetBalance"`
}

// RebalancePlan 리밸런싱 계획 (사용자 단위)
type RebalancePlan struct {
	Targets           []RebalanceTarget `json:"targets"`
	TotalTargetWeight float64           `json:"totalTargetWeight"`
	TotalAssetValue   float64           `json:"totalAssetValue"`
}

// AssetType 자산 유형
type AssetType string

const (
	AssetStock AssetType = "stock"
	AssetBond  AssetType = "bond"
	AssetFund  AssetType = "fund"
	AssetCash  AssetType = "cash"
)

// Label returns the Korean display label
func (t AssetType) Label() string {
	switch t {
	case AssetStock:
		return "주식/ETF"
	case AssetBond:
		return "채권"
	case AssetFund:
		return "펀드"
	case AssetCash:
		return CashName
	default:
		return string(t)
	}
}

// AssetTypeItem 자산 유형별 비중
type AssetTypeItem struct {
	Type   AssetType `json:"type"`
	Label  string    `json:"label"`
	Amount float64   `json:"amount"`
	Weight float64   `json:"weight"`
}
