package usecase

import (
	"context"
	"time"

	"registration_backend/internal/feature/registration/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// FindByEmail は正規化済みメールアドレスに一致するユーザーを取得します。
	// 存在しない場合は ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByPublicID は公開IDに一致するユーザーを取得します。
	// 存在しない場合は ErrUserNotFound を返します。
	FindByPublicID(ctx context.Context, id entity.PublicID) (*entity.User, error)

	// Insert は新しいユーザーを保存し、採番された内部IDを user.ID に設定します。
	// メールアドレスの一意制約に違反した場合は ErrEmailAlreadyRegistered を返します。
	Insert(ctx context.Context, user *entity.User) error

	// Update はユーザーの状態を保存します。
	// 保存済みの行が既に pending でない場合は domain.ErrAlreadyActive を返します。
	Update(ctx context.Context, user *entity.User) error
}

// ActivationCodeRepository はアクティベーションコードの永続化層を抽象化します。
type ActivationCodeRepository interface {
	// Insert は新しいコードを保存し、code.ID を設定します。
	// 同じ (user, code) の組が既にある場合は新しい内容で上書きします。
	Insert(ctx context.Context, code *entity.ActivationCode) error

	// FindLatestForUser はユーザーに最後に発行されたコードを返します。
	// 一度も発行されていない場合は ErrCodeNotFound を返します。
	FindLatestForUser(ctx context.Context, userID uint) (*entity.ActivationCode, error)

	// FindByValue はユーザーに発行された指定の値のコードを返します。
	// 該当するコードがない場合は ErrCodeNotFound を返します。
	FindByValue(ctx context.Context, userID uint, code string) (*entity.ActivationCode, error)

	// Update はコードの状態を保存します。
	// 保存済みの行が既に pending でない場合は domain.ErrCodeAlreadyUsed を返します。
	Update(ctx context.Context, code *entity.ActivationCode) error

	// InvalidateOutstandingForUser はユーザーの pending なコードをすべて expired にします。
	InvalidateOutstandingForUser(ctx context.Context, userID uint, now time.Time) error
}

// TxRepositories は1つのトランザクションに束縛されたリポジトリを提供します。
type TxRepositories interface {
	Users() UserRepository
	Codes() ActivationCodeRepository
}

// UnitOfWork はトランザクション境界を表します。
// fn がエラーを返した場合、fn 内の書き込みはすべてロールバックされます。
// fn に渡される ctx はトランザクションのタイムアウトを含むため、fn 内ではこちらを使います。
type UnitOfWork interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}

// Notifier はアクティベーションコードをユーザーに届けます。
type Notifier interface {
	SendActivationCode(ctx context.Context, user *entity.User, code string) error
}

// CodeGenerator は推測不能な数字のみのコードを生成します。
type CodeGenerator interface {
	Generate() (string, error)
}

// PasswordHasher はパスワードのハッシュ化と検証を行います。
// ポリシー違反の場合、Hash は ErrWeakPassword を包んだエラーを返します。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

// TokenIssuer はアクセストークンを発行します。
type TokenIssuer interface {
	GenerateToken(subject, email string) (string, error)
}

// Metrics は登録フローのイベントを記録します。
type Metrics interface {
	UserRegistered()
	UserActivated()
	CodeIssued()
	NotificationFailed()
}

type nopMetrics struct{}

func (nopMetrics) UserRegistered()     {}
func (nopMetrics) UserActivated()      {}
func (nopMetrics) CodeIssued()         {}
func (nopMetrics) NotificationFailed() {}
