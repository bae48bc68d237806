package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumax90/pixlhub-gin/internal/apperr"
)

// HandleError 将服务层错误映射为 HTTP 响应
// 错误类型与状态码的对应关系:
//
//	NotFoundError        → 404
//	ValidationError      → 400
//	InvalidStateError    → 409
//	ExpiredResourceError → 410
//	StorageError         → 502
//	其余                  → 500
func HandleError(c *gin.Context, err error) {
	var notFound *apperr.NotFoundError
	var validation *apperr.ValidationError
	var invalidState *apperr.InvalidStateError
	var expired *apperr.ExpiredResourceError
	var storage *apperr.StorageError

	switch {
	case errors.As(err, &notFound):
		Error(c, http.StatusNotFound, "not found", err.Error())
	case errors.As(err, &validation):
		Error(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.As(err, &invalidState):
		Error(c, http.StatusConflict, "invalid state", err.Error())
	case errors.As(err, &expired):
		Error(c, http.StatusGone, "resource expired", err.Error())
	case errors.As(err, &storage):
		Error(c, http.StatusBadGateway, "storage error", err.Error())
	default:
		Error(c, http.StatusInternalServerError, "internal server error", err.Error())
	}
}

// ErrorHandlerMiddleware 错误处理中间件
// 兜底处理 handler 链中通过 c.Error 上报的错误
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			HandleError(c, c.Errors.Last().Err)
		}
	}
}
