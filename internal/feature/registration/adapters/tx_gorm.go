package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"registration_backend/internal/feature/registration/usecase"
)

// DefaultTxTimeout は呼び出し元のコンテキストに期限がない場合に適用するトランザクションのタイムアウトです。
const DefaultTxTimeout = 5 * time.Second

// gormUnitOfWork はUnitOfWorkインターフェースのGORM実装です。
type gormUnitOfWork struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ usecase.UnitOfWork = (*gormUnitOfWork)(nil)

// NewGormUnitOfWork は gormUnitOfWork の新しいインスタンスを生成します。
// timeout が0以下の場合は DefaultTxTimeout を使います。
func NewGormUnitOfWork(db *gorm.DB, timeout time.Duration) *gormUnitOfWork {
	if timeout <= 0 {
		timeout = DefaultTxTimeout
	}
	return &gormUnitOfWork{db: db, timeout: timeout}
}

// RunInTx は fn を1つのトランザクション内で実行します。
// fn がエラーを返すかパニックした場合はロールバックし、それ以外はコミットします。
func (u *gormUnitOfWork) RunInTx(ctx context.Context, fn func(ctx context.Context, repos usecase.TxRepositories) error) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, txRepositories{tx: tx})
	})
}

type txRepositories struct {
	tx *gorm.DB
}

func (r txRepositories) Users() usecase.UserRepository {
	return NewUserGorm(r.tx)
}

func (r txRepositories) Codes() usecase.ActivationCodeRepository {
	return NewActivationCodeGorm(r.tx)
}
