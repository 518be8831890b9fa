package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"registration_backend/internal/api"
	"registration_backend/internal/feature/registration/domain/entity"
	jwtmw "registration_backend/internal/platform/jwt"
)

// ContextPublicID は認証済みユーザーの公開IDを格納する gin.Context のキーです。
const ContextPublicID = "public_id"

// Authenticator はメールアドレスとパスワードの組を検証します。
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)
}

// TokenVerifier はアクセストークンを検証し subject（公開ID）を返します。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireUser は Basic 認証（email:password）または Bearer トークンを要求するミドルウェアです。
// tokens が nil の場合は Basic 認証のみ受け付けます。
// 失敗時は WWW-Authenticate ヘッダー付きの401を返し、後続のハンドラーは実行しません。
func RequireUser(authn Authenticator, tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := jwtmw.BearerToken(c.GetHeader("Authorization")); ok && tokens != nil {
			subject, err := tokens.Verify(token)
			if err != nil {
				unauthorized(c, codeUnauthorized, "invalid or expired token", err)
				return
			}
			c.Set(ContextPublicID, subject)
			c.Next()
			return
		}

		email, password, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c, codeUnauthorized, "authentication required", nil)
			return
		}
		user, err := authn.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			if status, _ := classify(err); status >= http.StatusInternalServerError {
				writeError(c, "authenticate", err)
				return
			}
			unauthorized(c, codeInvalidCredentials, "invalid email or password", err)
			return
		}
		c.Set(ContextPublicID, user.PublicID.String())
		c.Next()
	}
}

// RequireBasic は Basic 認証（email:password）のみを受け付けるミドルウェアです。
// Bearer トークンは拒否されるため、トークン再発行の連鎖で有効期限を延ばすことはできません。
func RequireBasic(authn Authenticator) gin.HandlerFunc {
	return RequireUser(authn, nil)
}

// CurrentPublicID は RequireUser が設定した公開IDを返します。
func CurrentPublicID(c *gin.Context) string {
	return c.GetString(ContextPublicID)
}

func unauthorized(c *gin.Context, code, message string, err error) {
	slog.Warn("authentication failed", "reason", message, "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
	c.Header("WWW-Authenticate", `Basic realm="registration"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{
		Status:  http.StatusUnauthorized,
		Code:    code,
		Message: message,
	})
}
