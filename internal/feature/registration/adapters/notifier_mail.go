package adapters

import (
	"context"
	"fmt"
	"time"

	"registration_backend/internal/feature/registration/domain/entity"
	"registration_backend/internal/feature/registration/usecase"
	"registration_backend/internal/platform/logger"
)

// DefaultNotifyTimeout は呼び出し元のコンテキストに期限がない場合に適用する送信タイムアウトです。
const DefaultNotifyTimeout = 10 * time.Second

// Mailer はアクティベーションコードのメールを送る配送手段です。
// ログ出力、SES、Redis キューのいずれかが実装します。
type Mailer interface {
	SendActivationCode(ctx context.Context, to, code string) error
}

// mailNotifier は Mailer を Notifier ポートに適合させます。
type mailNotifier struct {
	mailer  Mailer
	timeout time.Duration
}

var _ usecase.Notifier = (*mailNotifier)(nil)

// NewMailNotifier は mailNotifier の新しいインスタンスを生成します。
func NewMailNotifier(mailer Mailer, timeout time.Duration) *mailNotifier {
	if timeout <= 0 {
		timeout = DefaultNotifyTimeout
	}
	return &mailNotifier{mailer: mailer, timeout: timeout}
}

// SendActivationCode はユーザーの登録メールアドレスにコードを送ります。
func (n *mailNotifier) SendActivationCode(ctx context.Context, user *entity.User, code string) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}
	if err := n.mailer.SendActivationCode(ctx, user.Email, code); err != nil {
		return fmt.Errorf("send activation code to %s: %w", logger.RedactEmail(user.Email), err)
	}
	return nil
}
