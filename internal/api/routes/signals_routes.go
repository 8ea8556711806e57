package routes

import (
	"github.com/gin-gonic/gin"

	signalsHandlers "github.com/nkjh2020/investment-manager/internal/api/handlers/signals"
)

// RegisterSignalsRoutes Signals API 라우트 등록
func RegisterSignalsRoutes(api *gin.RouterGroup, h *signalsHandlers.Handler) {
	api.GET("/signals", h.GetSignals)
}
