package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
)

// rising returns n closes, newest first, strictly increasing over time
func rising(n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(1000 + (n-i)*10)
	}
	return out
}

func falling(n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = float64(1000 + i*10)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestMovingAverage(t *testing.T) {
	t.Run("too short returns nil", func(t *testing.T) {
		for _, period := range MAPeriods {
			assert.Nil(t, MovingAverage(rising(period-1), period), "period %d", period)
		}
	})

	t.Run("uses newest closes and rounds", func(t *testing.T) {
		closes := []float64{101, 102, 104, 900, 900}
		ma := MovingAverage(closes, 3)
		require.NotNil(t, ma)
		assert.Equal(t, 102.0, *ma) // 102.33 → 102
	})

	t.Run("exact length", func(t *testing.T) {
		ma := MovingAverage(constant(20, 5000), 20)
		require.NotNil(t, ma)
		assert.Equal(t, 5000.0, *ma)
	})
}

func TestRSI(t *testing.T) {
	t.Run("too short returns nil", func(t *testing.T) {
		assert.Nil(t, RSI(rising(14), 14))
		assert.Nil(t, RSI(nil, 14))
	})

	t.Run("monotonic increasing returns 100", func(t *testing.T) {
		for _, n := range []int{15, 30, 250} {
			rsi := RSI(rising(n), 14)
			require.NotNil(t, rsi)
			assert.Equal(t, 100.0, *rsi, "n=%d", n)
		}
	})

	t.Run("monotonic decreasing returns 0", func(t *testing.T) {
		for _, n := range []int{15, 30, 250} {
			rsi := RSI(falling(n), 14)
			require.NotNil(t, rsi)
			assert.Equal(t, 0.0, *rsi, "n=%d", n)
		}
	})

	t.Run("flat series has no loss", func(t *testing.T) {
		rsi := RSI(constant(20, 100), 14)
		require.NotNil(t, rsi)
		assert.Equal(t, 100.0, *rsi)
	})

	t.Run("wilder smoothing", func(t *testing.T) {
		// 과거→최신: 14개 변화 중 +1 x7, -1 x7 → avgGain=avgLoss=0.5
		// 이후 +2 한 번: gain=(0.5*13+2)/14, loss=(0.5*13)/14 → RSI=56.7
		oldestFirst := []float64{100}
		for i := 0; i < 7; i++ {
			last := oldestFirst[len(oldestFirst)-1]
			oldestFirst = append(oldestFirst, last+1, last)
		}
		oldestFirst = append(oldestFirst, oldestFirst[len(oldestFirst)-1]+2)

		closes := make([]float64, len(oldestFirst))
		for i, v := range oldestFirst {
			closes[len(oldestFirst)-1-i] = v
		}

		rsi := RSI(closes, 14)
		require.NotNil(t, rsi)
		assert.Equal(t, 56.7, *rsi)
	})
}

func TestVolumeOscillator(t *testing.T) {
	t.Run("too short returns nil", func(t *testing.T) {
		assert.Nil(t, VolumeOscillator(constant(19, 100), 5, 20))
	})

	t.Run("zero long mean returns nil", func(t *testing.T) {
		assert.Nil(t, VolumeOscillator(constant(20, 0), 5, 20))
	})

	t.Run("short above long", func(t *testing.T) {
		vols := append(constant(5, 200), constant(15, 100)...)
		// short=200, long=(1000+1500)/20=125 → 60%
		vo := VolumeOscillator(vols, 5, 20)
		require.NotNil(t, vo)
		assert.Equal(t, 60.0, *vo)
	})

	t.Run("rounded to 2 decimals", func(t *testing.T) {
		vols := append(constant(5, 100), constant(15, 110)...)
		// short=100, long=107.5 → -6.976..
		vo := VolumeOscillator(vols, 5, 20)
		require.NotNil(t, vo)
		assert.Equal(t, -6.98, *vo)
	})
}

func TestComputeAll(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		ind := ComputeAll(nil)
		assert.True(t, ind.IsEmpty())
	})

	t.Run("short series only has price and short windows", func(t *testing.T) {
		series := make([]price.PricePoint, 30)
		for i := range series {
			series[i] = price.PricePoint{Close: float64(100 + 30 - i), Volume: 1000}
		}

		ind := ComputeAll(series)
		require.NotNil(t, ind.Price)
		assert.Equal(t, 130.0, *ind.Price)
		assert.NotNil(t, ind.MA20)
		assert.Nil(t, ind.MA60)
		assert.Nil(t, ind.MA120)
		assert.Nil(t, ind.MA200)
		require.NotNil(t, ind.RSI)
		assert.Equal(t, 100.0, *ind.RSI)
		require.NotNil(t, ind.VO)
		assert.Equal(t, 0.0, *ind.VO)
	})

	t.Run("full year", func(t *testing.T) {
		series := make([]price.PricePoint, 250)
		for i := range series {
			series[i] = price.PricePoint{Close: 100, Volume: 10}
		}

		ind := ComputeAll(series)
		assert.NotNil(t, ind.MA200)
		assert.Equal(t, 100.0, *ind.MA120)
	})
}
