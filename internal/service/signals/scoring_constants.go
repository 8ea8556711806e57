package signals

// ==============================================================================
// 점수 / 액션 임계값
// ==============================================================================

// Momentum (RSI) bands
const (
	RSIOverbought  = 80.0 // 초과: 과매수
	RSIStrong      = 65.0 // 이상: 강세
	RSIHealthy     = 50.0 // 이상: 건강한 상승
	RSIWeak        = 30.0 // 이상: 약세 (반등 가능), 미만: 과매도
	RSISellCeiling = 40.0 // SELL은 RSI가 이 값 미만일 때만

	MomentumOverbought = -2
	MomentumStrong     = 1
	MomentumHealthy    = 2
	MomentumWeak       = 1
	MomentumOversold   = 2 // 역발상 매수
)

// Volume oscillator bands
const (
	VOSurge = 20.0  // 초과: 거래량 증가
	VODrop  = -20.0 // 미만: 거래량 감소

	VolumeSurgeScore = 1
	VolumeDropScore  = -1
)

// Action thresholds on the total score
const (
	StrongBuyMinTotal = 6
	BuyMinTotal       = 4
	HoldMinTotal      = 2
	TrimMinTotal      = 0

	BuyMinTrend  = 3 // BUY: 추세 점수 하한
	HoldMinTrend = 2 // HOLD: 추세 점수 하한

	MinTotalScore = -3
	MaxTotalScore = 7
)

// Text labels
const (
	ReasonInsufficientData = "데이터 부족"
	ReasonFetchFailed      = "데이터 조회 실패"
	SuggestionRetryLater   = "잠시 후 다시 시도하세요"
)
