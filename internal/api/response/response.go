package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nkjh2020/investment-manager/internal/api/middleware"
)

// SuccessResponse represents a successful API response
type SuccessResponse struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

// Meta represents metadata in response
type Meta struct {
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message,omitempty"`
	Count     int       `json:"count,omitempty"`
}

// Success sends a successful response with data
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: newMeta(c, "", 0)})
}

// SuccessWithMessage sends a successful response with data and message
func SuccessWithMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: newMeta(c, message, 0)})
}

// SuccessList sends a successful response with list data and count
func SuccessList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, SuccessResponse{Data: data, Meta: newMeta(c, "", count)})
}

func newMeta(c *gin.Context, message string, count int) Meta {
	return Meta{
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now(),
		Message:   message,
		Count:     count,
	}
}
