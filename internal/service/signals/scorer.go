package signals

import (
	"fmt"
	"math"
	"strings"

	"github.com/nkjh2020/investment-manager/internal/domain/signals"
)

// HoldingContext 포트폴리오 컨텍스트 (선택)
type HoldingContext struct {
	CurrentWeight *float64 // 현재 비중 (%)
	TargetWeight  *float64 // 목표 비중 (%)
}

// ActionResult 점수 및 액션 결정 결과
type ActionResult struct {
	Score      signals.Score
	Action     signals.ActionType
	Reason     string
	Suggestion string
}

// Scorer 지표 → 점수 → 액션 (상태 없음)
type Scorer struct{}

// NewScorer creates a new scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score computes trend/momentum/volume scores and picks an action
func (s *Scorer) Score(ind signals.Indicators, hc HoldingContext) ActionResult {
	trend := trendScore(ind)
	momentum := momentumScore(ind.RSI)
	volume := volumeScore(ind.VO)
	total := trend + momentum + volume

	action := decideAction(ind, trend, total, hc)

	return ActionResult{
		Score: signals.Score{
			Trend:    trend,
			Momentum: momentum,
			Volume:   volume,
			Total:    total,
		},
		Action:     action,
		Reason:     buildReason(ind),
		Suggestion: buildSuggestion(action, hc),
	}
}

// trendScore +1 per moving average below price (0~4)
func trendScore(ind signals.Indicators) int {
	if ind.Price == nil {
		return 0
	}
	score := 0
	for _, ma := range []*float64{ind.MA20, ind.MA60, ind.MA120, ind.MA200} {
		if ma != nil && *ind.Price > *ma {
			score++
		}
	}
	return score
}

// momentumScore RSI 구간 점수 (-2~+2)
func momentumScore(rsi *float64) int {
	if rsi == nil {
		return 0
	}
	switch r := *rsi; {
	case r > RSIOverbought:
		return MomentumOverbought
	case r >= RSIStrong:
		return MomentumStrong
	case r >= RSIHealthy:
		return MomentumHealthy
	case r >= RSIWeak:
		return MomentumWeak
	default:
		return MomentumOversold
	}
}

// volumeScore VO 구간 점수 (-1~+1)
func volumeScore(vo *float64) int {
	if vo == nil {
		return 0
	}
	switch {
	case *vo > VOSurge:
		return VolumeSurgeScore
	case *vo < VODrop:
		return VolumeDropScore
	default:
		return 0
	}
}

func decideAction(ind signals.Indicators, trend, total int, hc HoldingContext) signals.ActionType {
	switch {
	case total >= StrongBuyMinTotal:
		return signals.ActionStrongBuy

	case total >= BuyMinTotal:
		// 추세 양호 + RSI 적정 + 비중 미달이면 BUY
		underweight := hc.CurrentWeight != nil && hc.TargetWeight != nil && *hc.CurrentWeight < *hc.TargetWeight
		rsiInBand := ind.RSI != nil && *ind.RSI >= RSIHealthy && *ind.RSI <= RSIStrong
		if trend >= BuyMinTrend && rsiInBand && underweight {
			return signals.ActionBuy
		}
		return signals.ActionAdd

	case total >= HoldMinTotal:
		if trend >= HoldMinTrend {
			return signals.ActionHold
		}
		return signals.ActionTrim

	case total >= TrimMinTotal:
		return signals.ActionTrim

	default:
		belowLongTerm := ind.Price != nil && ind.MA200 != nil && *ind.Price < *ind.MA200
		if belowLongTerm && ind.RSI != nil && *ind.RSI < RSISellCeiling {
			return signals.ActionSell
		}
		return signals.ActionTrim
	}
}

// buildReason 판단 근거: 이평선 위/아래, RSI 구간, 거래량
func buildReason(ind signals.Indicators) string {
	var parts, above, below []string

	mas := []struct {
		label string
		value *float64
	}{
		{"MA20", ind.MA20},
		{"MA60", ind.MA60},
		{"MA120", ind.MA120},
		{"MA200", ind.MA200},
	}
	for _, ma := range mas {
		if ma.value == nil {
			continue
		}
		if ind.Price != nil && *ind.Price > *ma.value {
			above = append(above, ma.label)
		} else {
			below = append(below, ma.label)
		}
	}
	if len(above) > 0 {
		parts = append(parts, strings.Join(above, "·")+" 위")
	}
	if len(below) > 0 {
		parts = append(parts, strings.Join(below, "·")+" 아래")
	}

	if ind.RSI != nil {
		r := *ind.RSI
		n := int(math.Floor(r + 0.5))
		switch {
		case r > RSIOverbought:
			parts = append(parts, fmt.Sprintf("RSI 과매수(%d)", n))
		case r >= RSIStrong:
			parts = append(parts, fmt.Sprintf("RSI 강세(%d)", n))
		case r >= RSIHealthy:
			parts = append(parts, fmt.Sprintf("RSI 건강(%d)", n))
		case r >= RSIWeak:
			parts = append(parts, fmt.Sprintf("RSI 약세(%d)", n))
		default:
			parts = append(parts, fmt.Sprintf("RSI 과매도(%d)", n))
		}
	}

	if ind.VO != nil {
		switch {
		case *ind.VO > VOSurge:
			parts = append(parts, "거래량 증가")
		case *ind.VO < VODrop:
			parts = append(parts, "거래량 감소")
		}
	}

	if len(parts) == 0 {
		return ReasonInsufficientData
	}
	return strings.Join(parts, ", ")
}

// buildSuggestion 액션별 실행 제안 (비중이 없으면 괄호 생략)
func buildSuggestion(action signals.ActionType, hc HoldingContext) string {
	cw := formatWeight(hc.CurrentWeight)
	tw := formatWeight(hc.TargetWeight)

	switch action {
	case signals.ActionStrongBuy:
		if tw != "" {
			return fmt.Sprintf("강력 매수 권장 (목표 %s%%까지)", tw)
		}
		return "강력 매수 권장"
	case signals.ActionBuy:
		switch {
		case tw != "" && cw != "":
			return fmt.Sprintf("매수 적정 구간 (목표 %s%% → 현재 %s%%)", tw, cw)
		case tw != "":
			return fmt.Sprintf("매수 적정 구간 (목표 %s%%)", tw)
		}
		return "매수 적정 구간"
	case signals.ActionAdd:
		return withCurrent("소량 추가 가능", cw)
	case signals.ActionHold:
		return withCurrent("현 비중 유지", cw)
	case signals.ActionTrim:
		return withCurrent("일부 익절 고려", cw)
	case signals.ActionSell:
		return "매도 검토 (손절 또는 전량 매도)"
	default:
		return "판단 보류"
	}
}

func withCurrent(text, cw string) string {
	if cw == "" {
		return text
	}
	return fmt.Sprintf("%s (현재 %s%%)", text, cw)
}

func formatWeight(w *float64) string {
	if w == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *w)
}
