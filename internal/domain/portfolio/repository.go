package portfolio

import "context"

// HoldingsProvider 보유 종목/잔고 조회 (브로커 API 경계)
type HoldingsProvider interface {
	// GetBalance returns every account's holdings plus the merged summary.
	// Returns ErrHoldingsUnavailable (wrapped) when nothing could be fetched.
	GetBalance(ctx context.Context, userID string) (*Balance, error)
}

// TargetRepository 목표 비중 저장소
type TargetRepository interface {
	// GetTargets returns the user's target weights (empty slice when none)
	GetTargets(ctx context.Context, userID string) ([]TargetWeight, error)

	// SaveTargets replaces the user's target weights
	SaveTargets(ctx context.Context, userID string, targets []TargetWeight) error
}
