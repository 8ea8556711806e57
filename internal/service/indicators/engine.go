// Package indicators computes technical indicators from daily price series.
// 모든 함수는 순수 함수 (I/O 없음, 공유 상태 없음)
// 입력 시리즈는 최신순 (index 0 = 가장 최근)
package indicators

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
	"github.com/nkjh2020/investment-manager/internal/domain/signals"
)

// 기본 기간
const (
	RSIPeriod     = 14
	VOShortPeriod = 5
	VOLongPeriod  = 20
)

// MAPeriods are the moving-average windows reported in Indicators
var MAPeriods = [4]int{20, 60, 120, 200}

// MovingAverage 단순이동평균 (최근 period개 종가), 정수 반올림
// 데이터가 period보다 적으면 nil
func MovingAverage(closes []float64, period int) *float64 {
	mean, ok := recentMean(closes, period)
	if !ok {
		return nil
	}
	v := roundTo(mean, 0)
	return &v
}

// RSI Wilder's Smoothing RSI, 소수점 1자리
// 데이터가 period+1보다 적으면 nil, 평균 하락폭이 0이면 100
func RSI(closes []float64, period int) *float64 {
	if period < 1 || len(closes) < period+1 {
		return nil
	}

	// 과거 → 최신 순으로 순회
	n := len(closes)
	at := func(i int) float64 { return closes[n-1-i] }

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		diff := at(i) - at(i-1)
		if diff > 0 {
			avgGain += diff
		} else {
			avgLoss -= diff
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < n; i++ {
		diff := at(i) - at(i-1)
		gain, loss := 0.0, 0.0
		if diff > 0 {
			gain = diff
		} else if diff < 0 {
			loss = -diff
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	var rsi float64
	if avgLoss == 0 {
		rsi = 100
	} else {
		rs := avgGain / avgLoss
		rsi = roundTo(100-(100/(1+rs)), 1)
	}
	return &rsi
}

// VolumeOscillator VO = (VMA_short - VMA_long) / VMA_long * 100, 소수점 2자리
// 데이터가 long보다 적거나 VMA_long이 0이면 nil
func VolumeOscillator(volumes []float64, short, long int) *float64 {
	if len(volumes) < long {
		return nil
	}

	vmaShort, ok := recentMean(volumes, short)
	if !ok {
		return nil
	}
	vmaLong, ok := recentMean(volumes, long)
	if !ok || vmaLong == 0 {
		return nil
	}

	vo := roundTo((vmaShort-vmaLong)/vmaLong*100, 2)
	return &vo
}

// ComputeAll assembles every indicator from a daily series
func ComputeAll(series []price.PricePoint) signals.Indicators {
	if len(series) == 0 {
		return signals.Indicators{}
	}

	closes := price.Closes(series)
	volumes := price.Volumes(series)
	last := closes[0]

	return signals.Indicators{
		Price: &last,
		MA20:  MovingAverage(closes, MAPeriods[0]),
		MA60:  MovingAverage(closes, MAPeriods[1]),
		MA120: MovingAverage(closes, MAPeriods[2]),
		MA200: MovingAverage(closes, MAPeriods[3]),
		RSI:   RSI(closes, RSIPeriod),
		VO:    VolumeOscillator(volumes, VOShortPeriod, VOLongPeriod),
	}
}

// recentMean returns the mean of the newest period values.
// talib expects oldest-first input, so the window is reversed.
func recentMean(values []float64, period int) (float64, bool) {
	if period < 1 || len(values) < period {
		return 0, false
	}

	window := make([]float64, period)
	for i := 0; i < period; i++ {
		window[period-1-i] = values[i]
	}

	sma := talib.Sma(window, period)
	return sma[period-1], true
}

// roundTo rounds half up like the dashboard does (-2.5 → -2)
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(v*p+0.5) / p
}
