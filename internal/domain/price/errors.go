package price

import "errors"

// Domain errors
var (
	ErrInvalidSymbol = errors.New("invalid symbol")

	// Provider errors (캐시 레이어에서 stale 값으로 대체됨)
	ErrProviderUnavailable = errors.New("price provider unavailable")
	ErrProviderStatus      = errors.New("price provider returned non-2xx status")
	ErrDecodeFailed        = errors.New("price provider response decode failed")
	ErrNoData              = errors.New("price provider returned no data")
)
