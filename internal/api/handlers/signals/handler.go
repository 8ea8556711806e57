package signals

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nkjh2020/investment-manager/internal/api/middleware"
	"github.com/nkjh2020/investment-manager/internal/api/response"
	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
	"github.com/nkjh2020/investment-manager/internal/domain/signals"
)

// ComputeFailedMessage 신호 계산 실패 시 사용자 메시지
const ComputeFailedMessage = "신호 계산 중 오류가 발생했습니다"

// SignalService 신호 서비스 인터페이스
type SignalService interface {
	GetSignals(ctx context.Context, userID string, forceRefresh bool) (*signals.SignalsResponse, error)
}

// Handler Signals API 핸들러
type Handler struct {
	service SignalService
}

// NewHandler 핸들러 생성
func NewHandler(service SignalService) *Handler {
	return &Handler{service: service}
}

// GetSignals 보유 종목 신호 조회
// GET /api/signals?refresh=true
// 응답 본문은 envelope 없이 SignalsResponse 그대로
func (h *Handler) GetSignals(c *gin.Context) {
	force := c.Query("refresh") == "true"

	resp, err := h.service.GetSignals(c.Request.Context(), middleware.GetUserID(c), force)
	if err != nil {
		switch {
		case errors.Is(err, signals.ErrUserRequired):
			response.Unauthorized(c, "인증이 필요합니다")
		case errors.Is(err, portfolio.ErrHoldingsUnavailable):
			response.ExternalAPIError(c, ComputeFailedMessage, err)
		default:
			response.InternalError(c, ComputeFailedMessage, err)
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
