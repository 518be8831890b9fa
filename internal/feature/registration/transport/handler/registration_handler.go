// Package handler はregistrationフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"registration_backend/internal/api"
	"registration_backend/internal/feature/registration/domain/entity"
	"registration_backend/internal/feature/registration/transport/http/dto"
)

// RegistrationUsecase はハンドラーが利用するユースケースを定義します。
// インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type RegistrationUsecase interface {
	Register(ctx context.Context, email, password string) (*entity.User, error)
	Activate(ctx context.Context, publicID, code string) (*entity.User, error)
	ResendCode(ctx context.Context, publicID string) error
	GetCurrentUser(ctx context.Context, publicID string) (*entity.User, error)
	IssueAccessToken(ctx context.Context, publicID string) (string, error)
}

// RegistrationHandler は登録・アクティベーション操作のHTTPリクエストを処理します。
type RegistrationHandler struct {
	registration RegistrationUsecase
}

// NewRegistrationHandler はRegistrationHandlerの新しいインスタンスを生成します。
func NewRegistrationHandler(registration RegistrationUsecase) *RegistrationHandler {
	return &RegistrationHandler{registration: registration}
}

// Register は POST /v1/register を処理します。
// - リクエストJSONをRegisterReqにバインド
// - 成功時は作成したユーザーを201で返却
// - メール形式不正・パスワード強度不足は400、メール重複は409
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req dto.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, "register", err)
		return
	}
	user, err := h.registration.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, "register", err)
		return
	}
	slog.Info("registration accepted", "user", user, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Activate は POST /v1/register/activate を処理します。認証済みユーザーが対象です。
func (h *RegistrationHandler) Activate(c *gin.Context) {
	var req dto.ActivateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, "activate", err)
		return
	}
	user, err := h.registration.Activate(c.Request.Context(), CurrentPublicID(c), req.Code)
	if err != nil {
		writeError(c, "activate", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// ResendCode は POST /v1/register/resend-code を処理します。
func (h *RegistrationHandler) ResendCode(c *gin.Context) {
	if err := h.registration.ResendCode(c.Request.Context(), CurrentPublicID(c)); err != nil {
		writeError(c, "resend code", err)
		return
	}
	c.JSON(http.StatusCreated, api.MessageResponse{Message: "a new activation code has been sent"})
}

// Me は GET /v1/register/me を処理します。
func (h *RegistrationHandler) Me(c *gin.Context) {
	user, err := h.registration.GetCurrentUser(c.Request.Context(), CurrentPublicID(c))
	if err != nil {
		writeError(c, "get current user", err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Token は POST /v1/register/token を処理し、Bearer 認証用のアクセストークンを返します。
func (h *RegistrationHandler) Token(c *gin.Context) {
	token, err := h.registration.IssueAccessToken(c.Request.Context(), CurrentPublicID(c))
	if err != nil {
		writeError(c, "issue token", err)
		return
	}
	c.JSON(http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "Bearer"})
}

func toUserResponse(u *entity.User) api.UserResponse {
	return api.UserResponse{
		PublicID: u.PublicID.String(),
		Email:    u.Email,
		Status:   string(u.Status),
	}
}
