// Package middleware はHTTP境界で共通に適用するginミドルウェアを提供します。
package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"places_backend/internal/platform/apperr"
)

// UnknownErrorMessage は分類されていないエラーに返す文言です。
const UnknownErrorMessage = "An unknown error occurred!"

// ErrorResponse はエラー応答のJSON表現です。
type ErrorResponse struct {
	Message string                  `json:"message"`
	Errors  []apperr.FieldViolation `json:"errors,omitempty"`
}

// ErrorHandler はハンドラーがc.Errorで登録した最後のエラーを分類し、
// {"message"}形式のJSONで応答する唯一の境界です。
// 既に応答が書き込まれている場合はログ出力のみ行います。
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		var ae *apperr.Error
		res := ErrorResponse{Message: UnknownErrorMessage}
		kind := apperr.KindInternal
		if errors.As(err, &ae) {
			kind = ae.Kind
			res.Message = ae.Message
			res.Errors = ae.Fields
		}
		status := kind.Status()

		logError(c, kind, status, err)

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, res)
	}
}

// NotFound は未定義ルートへの応答を返します。
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Message: "Could not find this route."})
}

func logError(c *gin.Context, kind apperr.Kind, status int, err error) {
	attrs := []any{
		"kind", kind.String(),
		"status", status,
		"method", c.Request.Method,
		"path", c.FullPath(),
		"remote_addr", c.ClientIP(),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", attrs...)
		return
	}
	slog.Warn("request rejected", attrs...)
}
