package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
)

const dailyBody = `{"chart":{"result":[{
  "timestamp":[1767571200,1767657600,1767744000,1767830400],
  "indicators":{"quote":[{"close":[100.5,null,102,103],"volume":[1000,2000,null,4000]}]}
}],"error":null}}`

const indexBody = `{"chart":{"result":[{"meta":{"regularMarketPrice":5123.456,"previousClose":5000}}]}}`

func TestClient_FetchDailySeries(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(dailyBody))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	series, err := c.FetchDailySeries(context.Background(), "005930.KS")
	require.NoError(t, err)

	assert.Equal(t, "/005930.KS", gotPath)
	assert.Contains(t, gotQuery, "range=1y")
	assert.Contains(t, gotQuery, "interval=1d")

	// null close 제거, 최신순
	require.Len(t, series, 3)
	assert.Equal(t, "2026-01-08", series[0].Date)
	assert.Equal(t, 103.0, series[0].Close)
	assert.Equal(t, 4000.0, series[0].Volume)
	assert.Equal(t, 0.0, series[1].Volume, "null volume becomes 0")
	assert.Equal(t, 100.5, series[2].Close)
}

func TestClient_FetchIndexSnapshot(t *testing.T) {
	t.Run("rounded to 2 decimals", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.Contains(r.URL.RawQuery, "range=5d"))
			_, _ = w.Write([]byte(indexBody))
		}))
		defer srv.Close()

		snap, err := NewClient(srv.URL, time.Second).FetchIndexSnapshot(context.Background(), "^GSPC")
		require.NoError(t, err)

		assert.Equal(t, 5123.46, snap.Current)
		assert.Equal(t, 5000.0, snap.Prev)
		assert.Equal(t, 123.46, snap.Change)
		assert.Equal(t, 2.47, snap.ChangePct)
	})

	t.Run("previous close missing falls back to current", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"regularMarketPrice":18.2}}]}}`))
		}))
		defer srv.Close()

		snap, err := NewClient(srv.URL, time.Second).FetchIndexSnapshot(context.Background(), "^VIX")
		require.NoError(t, err)
		assert.Equal(t, 18.2, snap.Current)
		assert.Equal(t, 0.0, snap.ChangePct)
	})
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"non-2xx", http.StatusServiceUnavailable, `{}`, price.ErrProviderStatus},
		{"invalid json", http.StatusOK, `{"chart":`, price.ErrDecodeFailed},
		{"empty result", http.StatusOK, `{"chart":{"result":[]}}`, price.ErrNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).FetchDailySeries(context.Background(), "000660.KS")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}
