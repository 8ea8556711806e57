package kis

import "errors"

var (
	// ErrAPI KIS가 비정상 응답을 반환
	ErrAPI = errors.New("kis api error")

	// ErrUnauthorized 토큰 재발급 후에도 401
	ErrUnauthorized = errors.New("kis unauthorized")

	// ErrRateLimited 토큰 발급 제한 (EGW00133)
	ErrRateLimited = errors.New("kis token rate limited")
)
