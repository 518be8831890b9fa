// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"registration_backend/internal/api"
)

// pingTimeout は依存先の疎通確認に使うタイムアウトです。
const pingTimeout = 2 * time.Second

// Pinger は依存先（データベース等）の疎通確認を行います。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はサービスのヘルスチェックを処理します。
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

// NewHealthHandler はHealthHandlerを生成します。db が nil の場合は疎通確認を行いません。
func NewHealthHandler(db Pinger, now func() time.Time) *HealthHandler {
	if now == nil {
		now = time.Now
	}
	return &HealthHandler{db: db, now: now}
}

// Liveness はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// HTTPメソッドに応じて適切にレスポンスし、キャッシュを防止します。
func (h *HealthHandler) Liveness(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.JSON(http.StatusOK, api.HealthResponse{Status: "ok"})
	}
}

// Healthcheck は /v1/healthcheck を処理します。
// データベースに到達できない場合は503を返します。
func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	ts := h.now().UTC().Format(time.RFC3339)

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			slog.Error("healthcheck failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, api.HealthResponse{
				Status:    "unavailable",
				Timestamp: ts,
				Message:   "database is unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, api.HealthResponse{
		Status:    "ok",
		Timestamp: ts,
		Message:   "registration service is up and running",
	})
}
