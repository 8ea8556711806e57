package portfolio

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nkjh2020/investment-manager/internal/api/middleware"
	"github.com/nkjh2020/investment-manager/internal/api/response"
	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

// Service 포트폴리오 서비스 인터페이스
type Service interface {
	Balance(ctx context.Context, userID string) (*portfolio.Balance, error)
	Allocation(ctx context.Context, userID string, includeCash bool) ([]portfolio.AllocationItem, error)
	AssetTypes(ctx context.Context, userID string) ([]portfolio.AssetTypeItem, error)
	Rebalance(ctx context.Context, userID string) (*portfolio.RebalancePlan, error)
	Targets(ctx context.Context, userID string) ([]portfolio.TargetWeight, error)
	SaveTargets(ctx context.Context, userID string, targets []portfolio.TargetWeight) error
}

// Handler 포트폴리오 / 리밸런싱 API 핸들러
type Handler struct {
	service Service
}

// NewHandler 핸들러 생성
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// SaveTargetsRequest PUT /api/rebalance/targets 요청
type SaveTargetsRequest struct {
	Targets []portfolio.TargetWeight `json:"targets" binding:"required"`
}

// GetBalance 계좌별 잔고 + 병합 요약
// GET /api/portfolio/balance
func (h *Handler) GetBalance(c *gin.Context) {
	bal, err := h.service.Balance(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, bal)
}

// GetAllocation 종목별 비중
// GET /api/portfolio/allocation?cash=true
func (h *Handler) GetAllocation(c *gin.Context) {
	includeCash := false
	if raw := c.Query("cash"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "cash must be true or false")
			return
		}
		includeCash = v
	}

	items, err := h.service.Allocation(c.Request.Context(), middleware.GetUserID(c), includeCash)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessList(c, items, len(items))
}

// GetAssetTypes 자산 유형별 비중
// GET /api/portfolio/asset-types
func (h *Handler) GetAssetTypes(c *gin.Context) {
	items, err := h.service.AssetTypes(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessList(c, items, len(items))
}

// GetRebalance 리밸런싱 계획
// GET /api/rebalance
func (h *Handler) GetRebalance(c *gin.Context) {
	plan, err := h.service.Rebalance(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, plan)
}

// GetTargets 목표 비중 조회
// GET /api/rebalance/targets
func (h *Handler) GetTargets(c *gin.Context) {
	targets, err := h.service.Targets(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.DatabaseError(c, err)
		return
	}
	response.SuccessList(c, targets, len(targets))
}

// PutTargets 목표 비중 저장 (전체 교체)
// PUT /api/rebalance/targets
func (h *Handler) PutTargets(c *gin.Context) {
	var req SaveTargetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.service.SaveTargets(c.Request.Context(), middleware.GetUserID(c), req.Targets); err != nil {
		if errors.Is(err, portfolio.ErrInvalidTargets) {
			response.ValidationError(c, err.Error(), []response.FieldError{{Field: "targets", Message: err.Error()}})
			return
		}
		response.DatabaseError(c, err)
		return
	}

	response.SuccessWithMessage(c, req.Targets, "목표 비중이 저장되었습니다")
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, portfolio.ErrHoldingsUnavailable) {
		response.ExternalAPIError(c, "잔고 조회에 실패했습니다", err)
		return
	}
	response.InternalError(c, "포트폴리오 계산 중 오류가 발생했습니다", err)
}
