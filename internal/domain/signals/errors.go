package signals

import "errors"

var (
	// ErrUserRequired 사용자 식별자 누락
	ErrUserRequired = errors.New("user identity required")

	// ErrRegimeUnavailable 시장 국면 계산 실패
	ErrRegimeUnavailable = errors.New("market regime unavailable")

	// ErrIndicatorsUnavailable 지표 계산 실패
	ErrIndicatorsUnavailable = errors.New("indicators unavailable")
)
