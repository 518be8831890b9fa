package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"registration_backend/internal/api"
	"registration_backend/internal/feature/registration/domain"
	"registration_backend/internal/feature/registration/usecase"
)

// errorKind はエラー種別とHTTPステータス、公開用のコード名の対応です。
type errorKind struct {
	err    error
	status int
	code   string
}

// errorKinds は上から順に errors.Is で照合されます。
var errorKinds = []errorKind{
	{domain.ErrInvalidEmail, http.StatusBadRequest, "InvalidEmail"},
	{usecase.ErrWeakPassword, http.StatusBadRequest, "WeakPassword"},
	{usecase.ErrInvalidCode, http.StatusBadRequest, "InvalidCode"},
	{domain.ErrCodeExpired, http.StatusBadRequest, "CodeExpired"},
	{domain.ErrCodeAlreadyUsed, http.StatusBadRequest, "CodeAlreadyUsed"},
	{usecase.ErrInvalidCredentials, http.StatusUnauthorized, codeInvalidCredentials},
	{usecase.ErrUserNotFound, http.StatusNotFound, "UserNotFound"},
	{usecase.ErrCodeNotFound, http.StatusNotFound, "CodeNotFound"},
	{usecase.ErrEmailAlreadyRegistered, http.StatusConflict, "EmailAlreadyRegistered"},
	{domain.ErrAlreadyActive, http.StatusConflict, "AlreadyActive"},
}

const (
	codeInvalidRequest     = "InvalidRequest"
	codeUnauthorized       = "Unauthorized"
	codeInvalidCredentials = "InvalidCredentials"
	codeInternal           = "InternalError"
)

// classify はエラーをHTTPステータスとコード名に変換します。未知のエラーは500です。
func classify(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, codeInternal
}

// writeError はエラーをレスポンスに書き込みます。
// 4xx は Warn、5xx は Error でログに残し、5xx の詳細はクライアントへ返しません。
func writeError(c *gin.Context, op string, err error) {
	status, code := classify(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "error", err, "remote_addr", c.ClientIP())
		message = "internal server error"
	} else {
		slog.Warn(op+" failed", "error", err, "code", code, "remote_addr", c.ClientIP())
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Status: status, Code: code, Message: message})
}

// writeBindError はリクエストボディの解析・バリデーション失敗を400として返します。
func writeBindError(c *gin.Context, op string, err error) {
	slog.Warn(op+" validation failed", "error", err, "remote_addr", c.ClientIP())
	c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    codeInvalidRequest,
		Message: "invalid request",
		Details: []string{err.Error()},
	})
}
