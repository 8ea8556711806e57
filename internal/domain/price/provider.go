package price

import "context"

// Provider fetches raw market data from an upstream source
type Provider interface {
	// FetchDailySeries returns ~1 year of daily bars, newest first
	FetchDailySeries(ctx context.Context, symbol string) ([]PricePoint, error)
	// FetchIndexSnapshot returns the latest quote for an index symbol
	FetchIndexSnapshot(ctx context.Context, symbol string) (*IndexSnapshot, error)
}
