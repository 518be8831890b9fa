package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"registration_backend/internal/feature/registration/domain"
	"registration_backend/internal/feature/registration/domain/entity"
)

const (
	// DefaultCodeTTL はアクティベーションコードの既定の有効期間です。
	DefaultCodeTTL = 10 * time.Minute
	// DefaultCodeLength はアクティベーションコードの既定の桁数です。
	DefaultCodeLength = 4

	// dummyPasswordHash はユーザーが存在しない場合にも検証処理を走らせるためのダミーハッシュです。
	dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// Config はユースケースの設定値です。ゼロ値の項目には既定値が使われます。
type Config struct {
	CodeTTL    time.Duration
	CodeLength int
}

func (c Config) withDefaults() Config {
	if c.CodeTTL <= 0 {
		c.CodeTTL = DefaultCodeTTL
	}
	if c.CodeLength <= 0 {
		c.CodeLength = DefaultCodeLength
	}
	return c
}

// Dependencies はユースケースが利用するポートの集合です。
// Metrics と Tokens は省略可能です。
type Dependencies struct {
	Users      UserRepository
	UnitOfWork UnitOfWork
	Notifier   Notifier
	Generator  CodeGenerator
	Hasher     PasswordHasher
	Clock      Clock
	Tokens     TokenIssuer
	Metrics    Metrics
}

// registrationUsecase はユーザー登録とアクティベーションのビジネスロジックを実装します。
// プロセス内に可変な共有状態は持たず、状態はすべてリポジトリの背後にあります。
type registrationUsecase struct {
	users     UserRepository
	uow       UnitOfWork
	notifier  Notifier
	generator CodeGenerator
	hasher    PasswordHasher
	clock     Clock
	tokens    TokenIssuer
	metrics   Metrics
	cfg       Config
}

// NewRegistrationUsecase は registrationUsecase の新しいインスタンスを生成します。
func NewRegistrationUsecase(deps Dependencies, cfg Config) *registrationUsecase {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &registrationUsecase{
		users:     deps.Users,
		uow:       deps.UnitOfWork,
		notifier:  deps.Notifier,
		generator: deps.Generator,
		hasher:    deps.Hasher,
		clock:     deps.Clock,
		tokens:    deps.Tokens,
		metrics:   metrics,
		cfg:       cfg.withDefaults(),
	}
}

// Register は pending 状態のユーザーを作成し、最初のアクティベーションコードを発行します。
// ユーザーと最初のコードは同一トランザクションで保存し、通知はコミット後に行います。
func (u *registrationUsecase) Register(ctx context.Context, email, password string) (*entity.User, error) {
	email = entity.NormalizeEmail(email)

	// 事前チェックは早期リターンのためのもので、一意性の保証はストレージの一意制約に任せる
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyRegistered
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, translate("find user by email", err)
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, translate("hash password", err)
	}

	now := u.clock.Now()
	user, err := entity.NewUser(email, hash, now)
	if err != nil {
		return nil, translate("create user", err)
	}

	var code *entity.ActivationCode
	err = u.uow.RunInTx(ctx, func(ctx context.Context, repos TxRepositories) error {
		if err := repos.Users().Insert(ctx, user); err != nil {
			return err
		}
		issued, err := u.issueCode(ctx, repos, user, now)
		if err != nil {
			return err
		}
		code = issued
		return nil
	})
	if err != nil {
		return nil, translate("register user", err)
	}

	u.metrics.UserRegistered()
	u.metrics.CodeIssued()
	slog.Info("user registered", "user", user)

	u.notify(ctx, user, code)
	return user, nil
}

// Activate は提出されたコードを検証し、コードの消費とユーザーの有効化を同一トランザクションで保存します。
// 比較対象は最後に発行されたコードのみです。
func (u *registrationUsecase) Activate(ctx context.Context, publicID, submitted string) (*entity.User, error) {
	user, err := u.loadUser(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if user.IsActive() {
		return nil, domain.ErrAlreadyActive
	}

	now := u.clock.Now()
	var activated *entity.User
	err = u.uow.RunInTx(ctx, func(ctx context.Context, repos TxRepositories) error {
		code, err := repos.Codes().FindLatestForUser(ctx, user.ID)
		if err != nil {
			return err
		}
		if !code.Matches(submitted) {
			return u.mismatch(ctx, repos, user, submitted)
		}
		used, err := code.Consume(now)
		if err != nil {
			return err
		}
		next, err := user.Activate(now)
		if err != nil {
			return err
		}
		// どちらの更新も pending を条件にしているため、二重送信の敗者はここで失敗する
		if err := repos.Codes().Update(ctx, used); err != nil {
			return err
		}
		if err := repos.Users().Update(ctx, next); err != nil {
			return err
		}
		activated = next
		return nil
	})
	if err != nil {
		return nil, translate("activate user", err)
	}

	u.metrics.UserActivated()
	slog.Info("user activated", "user", activated)
	return activated, nil
}

// ResendCode は未使用のコードをすべて無効化し、新しい有効期間で新しいコードを発行します。
func (u *registrationUsecase) ResendCode(ctx context.Context, publicID string) error {
	user, err := u.loadUser(ctx, publicID)
	if err != nil {
		return err
	}
	if user.IsActive() {
		return domain.ErrAlreadyActive
	}

	now := u.clock.Now()
	var code *entity.ActivationCode
	err = u.uow.RunInTx(ctx, func(ctx context.Context, repos TxRepositories) error {
		if err := repos.Codes().InvalidateOutstandingForUser(ctx, user.ID, now); err != nil {
			return err
		}
		issued, err := u.issueCode(ctx, repos, user, now)
		if err != nil {
			return err
		}
		code = issued
		return nil
	})
	if err != nil {
		return translate("resend activation code", err)
	}

	u.metrics.CodeIssued()
	u.notify(ctx, user, code)
	return nil
}

// GetCurrentUser は公開IDでユーザーを取得します。副作用はありません。
func (u *registrationUsecase) GetCurrentUser(ctx context.Context, publicID string) (*entity.User, error) {
	return u.loadUser(ctx, publicID)
}

// Authenticate はメールアドレスとパスワードの組を検証します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもハッシュ検証を実行します。
// どちらが誤っていたかは区別せず ErrInvalidCredentials を返します。
func (u *registrationUsecase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, translate("find user by email", err)
	}

	hash := dummyPasswordHash
	if err == nil {
		hash = user.PasswordHash
	}
	ok := u.hasher.Verify(password, hash)

	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueAccessToken は認証済みユーザーのアクセストークンを発行します。
func (u *registrationUsecase) IssueAccessToken(ctx context.Context, publicID string) (string, error) {
	if u.tokens == nil {
		return "", infraError("issue access token", errors.New("token issuer is not configured"))
	}
	user, err := u.loadUser(ctx, publicID)
	if err != nil {
		return "", err
	}
	token, err := u.tokens.GenerateToken(user.PublicID.String(), user.Email)
	if err != nil {
		return "", infraError("issue access token", err)
	}
	return token, nil
}

// loadUser は公開IDを解析してユーザーを取得します。解析できないIDは ErrUserNotFound として扱います。
func (u *registrationUsecase) loadUser(ctx context.Context, publicID string) (*entity.User, error) {
	id, err := entity.ParsePublicID(publicID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := u.users.FindByPublicID(ctx, id)
	if err != nil {
		return nil, translate("find user by public id", err)
	}
	return user, nil
}

// issueCode は新しいコードを生成し、トランザクション内のリポジトリに保存します。
func (u *registrationUsecase) issueCode(ctx context.Context, repos TxRepositories, user *entity.User, now time.Time) (*entity.ActivationCode, error) {
	value, err := u.generator.Generate()
	if err != nil {
		return nil, infraError("generate activation code", err)
	}
	if len(value) != u.cfg.CodeLength {
		return nil, infraError("generate activation code", fmt.Errorf("expected %d digits, got %d", u.cfg.CodeLength, len(value)))
	}
	code, err := entity.IssueActivationCode(user, value, now, u.cfg.CodeTTL)
	if err != nil {
		return nil, infraError("issue activation code", err)
	}
	if err := repos.Codes().Insert(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// mismatch は最新のコードと一致しなかった提出値を分類します。
// 再送で置き換えられた過去のコードは ErrCodeExpired、それ以外は ErrInvalidCode です。
func (u *registrationUsecase) mismatch(ctx context.Context, repos TxRepositories, user *entity.User, submitted string) error {
	_, err := repos.Codes().FindByValue(ctx, user.ID, strings.TrimSpace(submitted))
	switch {
	case err == nil:
		return domain.ErrCodeExpired
	case errors.Is(err, ErrCodeNotFound):
		return ErrInvalidCode
	default:
		return err
	}
}

// notify はコミット後にコードを送信します。失敗はログとメトリクスに残し、呼び出し元には返しません。
// 利用者は ResendCode で再送できます。
func (u *registrationUsecase) notify(ctx context.Context, user *entity.User, code *entity.ActivationCode) {
	if err := u.notifier.SendActivationCode(ctx, user, code.Code); err != nil {
		u.metrics.NotificationFailed()
		slog.Warn("failed to deliver activation code", "user", user, "error", err)
	}
}
