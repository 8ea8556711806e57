package routes

import (
	"github.com/gin-gonic/gin"

	portfolioHandlers "github.com/nkjh2020/investment-manager/internal/api/handlers/portfolio"
)

// RegisterPortfolioRoutes 포트폴리오 / 리밸런싱 라우트 등록
func RegisterPortfolioRoutes(api *gin.RouterGroup, h *portfolioHandlers.Handler) {
	pf := api.Group("/portfolio")
	{
		pf.GET("/balance", h.GetBalance)
		pf.GET("/allocation", h.GetAllocation)
		pf.GET("/asset-types", h.GetAssetTypes)
	}

	rb := api.Group("/rebalance")
	{
		rb.GET("", h.GetRebalance)
		rb.GET("/targets", h.GetTargets)
		rb.PUT("/targets", h.PutTargets)
	}
}
