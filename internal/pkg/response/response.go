package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/websearch-mcp/internal/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    int    `json:"code"`              // 业务错误码（0表示成功）
	Message string `json:"message,omitempty"` // 提示信息
	Data    any    `json:"data"`              // 实际数据
}

// Success 成功响应（200）
func Success(c *gin.Context, data any) {
	SuccessWithMessage(c, "", data)
}

// SuccessWithMessage 带消息的成功响应（200）
func SuccessWithMessage(c *gin.Context, message string, data any) {
	if data == nil {
		data = struct{}{}
	}
	c.JSON(http.StatusOK, Response{
		Code:    apperrors.Success,
		Message: message,
		Data:    data,
	})
}

// HandleError 统一错误处理（使用AppError）
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	code := apperrors.ExtractCode(err)
	ErrorWithCode(c, code, apperrors.GetDetails(err))
}

// ErrorWithCode 使用错误码的错误响应
func ErrorWithCode(c *gin.Context, code int, details ...string) {
	c.AbortWithStatusJSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: apperrors.FormatError(code, details...),
		Data:    struct{}{},
	})
}
