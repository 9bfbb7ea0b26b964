// Package errors 将服务层错误转换为统一的 JSON 错误响应
package errors

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/middleware"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError 错误响应体，与成功响应共用 code/status/message 字段
type AppError struct {
	Code      int       `json:"code"`
	Status    bool      `json:"status"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c.Code(),
		Message:   c.Msg(),
		Details:   c.Details(),
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// FromError 将任意错误转换为 AppError
// 顺序：已有 AppError，错误码 *code.Code，请求超时或取消，其余归为内部错误
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return NewAppError(codeErr, err)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewAppError(code.ErrorRequestTimeout, err)
	}

	return NewAppError(code.ErrorServerInternal.WithDetails(err.Error()), err)
}

// ErrorResponse 输出错误响应，HTTP 状态码固定为 200，错误码在响应体中
func ErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err)
	appErr.TraceID = middleware.GetTraceIDFromGin(c)
	c.Set("status_code", http.StatusOK)
	c.JSON(http.StatusOK, appErr)
}
