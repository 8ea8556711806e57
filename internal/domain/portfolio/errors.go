package portfolio

import "errors"

var (
	// ErrHoldingsUnavailable 브로커 잔고 조회 실패 (요청 실패로 전파)
	ErrHoldingsUnavailable = errors.New("holdings unavailable")

	// ErrNoAccounts 사용자에 연결된 계좌 없음
	ErrNoAccounts = errors.New("no brokerage accounts configured")

	// ErrInvalidTargets 잘못된 목표 비중
	ErrInvalidTargets = errors.New("invalid target weights")
)
