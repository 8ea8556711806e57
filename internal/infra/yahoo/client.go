package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/nkjh2020/investment-manager/internal/domain/price"
)

const (
	DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultTimeout = 5 * time.Second

	userAgent = "Mozilla/5.0 (compatible; investment-manager/1.0)"
)

// Client handles Yahoo Finance chart API requests
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Yahoo Finance client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

var _ price.Provider = (*Client)(nil)

// FetchDailySeries fetches 1y of daily bars for a provider symbol (e.g. 005930.KS)
// 반환값은 최신순 (index 0 = 가장 최근)
func (c *Client) FetchDailySeries(ctx context.Context, symbol string) ([]price.PricePoint, error) {
	body, err := c.getChart(ctx, symbol, "1y")
	if err != nil {
		return nil, err
	}
	return parseDailySeries(body, symbol)
}

// FetchIndexSnapshot fetches the latest quote for an index symbol (e.g. ^GSPC)
func (c *Client) FetchIndexSnapshot(ctx context.Context, symbol string) (*price.IndexSnapshot, error) {
	body, err := c.getChart(ctx, symbol, "5d")
	if err != nil {
		return nil, err
	}
	return parseIndexSnapshot(body, symbol)
}

func (c *Client) getChart(ctx context.Context, symbol, rng string) ([]byte, error) {
	if symbol == "" {
		return nil, price.ErrInvalidSymbol
	}

	reqURL := fmt.Sprintf("%s/%s?interval=1d&range=%s&includePrePost=false",
		c.baseURL, url.PathEscape(symbol), rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", price.ErrProviderUnavailable, symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", price.ErrProviderUnavailable, symbol, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s status=%d", price.ErrProviderStatus, symbol, resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", price.ErrDecodeFailed, symbol)
	}

	return body, nil
}

func parseDailySeries(body []byte, symbol string) ([]price.PricePoint, error) {
	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: empty chart result for %s", price.ErrNoData, symbol)
	}

	timestamps := result.Get("timestamp")
	if !timestamps.Exists() {
		timestamps = result.Get("timestamps")
	}
	ts := timestamps.Array()
	closes := result.Get("indicators.quote.0.close").Array()
	volumes := result.Get("indicators.quote.0.volume").Array()

	series := make([]price.PricePoint, 0, len(ts))
	// 최신순으로 뒤집어서 담기
	for i := len(ts) - 1; i >= 0; i-- {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}

		var vol float64
		if i < len(volumes) {
			vol = volumes[i].Float() // null → 0
		}

		series = append(series, price.PricePoint{
			Date:   time.Unix(ts[i].Int(), 0).UTC().Format("2006-01-02"),
			Close:  closes[i].Float(),
			Volume: vol,
		})
	}

	return series, nil
}

func parseIndexSnapshot(body []byte, symbol string) (*price.IndexSnapshot, error) {
	meta := gjson.GetBytes(body, "chart.result.0.meta")
	if !meta.Exists() {
		return nil, fmt.Errorf("%w: empty chart meta for %s", price.ErrNoData, symbol)
	}

	prevField := meta.Get("previousClose")
	current := meta.Get("regularMarketPrice")

	var cur float64
	switch {
	case current.Exists() && current.Type != gjson.Null:
		cur = current.Float()
	case prevField.Exists() && prevField.Type != gjson.Null:
		cur = prevField.Float()
	}

	prev := cur
	if prevField.Exists() && prevField.Type != gjson.Null {
		prev = prevField.Float()
	}

	return &price.IndexSnapshot{
		Symbol:    symbol,
		Current:   round2(cur),
		Prev:      round2(prev),
		Change:    round2(cur - prev),
		ChangePct: round2(price.ChangePercent(cur, prev)),
		FetchedAt: time.Now(),
	}, nil
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
