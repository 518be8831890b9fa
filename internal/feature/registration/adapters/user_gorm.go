package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"registration_backend/internal/feature/registration/domain"
	"registration_backend/internal/feature/registration/domain/entity"
	"registration_backend/internal/feature/registration/usecase"
)

// userGorm はUserRepositoryインターフェースのGORM実装です。
// PostgreSQL と SQLite のどちらの接続でも動作します。
type userGorm struct {
	db *gorm.DB
}

// userGormがUserRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.UserRepository = (*userGorm)(nil)

// NewUserGorm は指定されたgorm.DB接続でuserGormの新しいインスタンスを生成します。
// トランザクション (*gorm.DB) を渡すと、そのトランザクションに束縛されます。
func NewUserGorm(db *gorm.DB) *userGorm {
	return &userGorm{db: db}
}

// FindByEmail はメールアドレスでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByPublicID は公開IDでユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *userGorm) FindByPublicID(ctx context.Context, id entity.PublicID) (*entity.User, error) {
	return r.findOne(ctx, "public_id = ?", id.UUID().String())
}

func (r *userGorm) findOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	var m UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return m.ToEntity()
}

// Insert はユーザーをデータベースに追加し、採番されたIDを u.ID に設定します。
// 同じメールアドレスのユーザーが既に存在する場合、usecase.ErrEmailAlreadyRegisteredを返します。
func (r *userGorm) Insert(ctx context.Context, u *entity.User) error {
	m := UserModelFromEntity(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isEmailConflict(err) {
			return usecase.ErrEmailAlreadyRegistered
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = m.ID
	return nil
}

// Update はユーザーのステータスを保存します。
// 更新は pending の行に限定され、対象がない場合は domain.ErrAlreadyActive を返します。
func (r *userGorm) Update(ctx context.Context, u *entity.User) error {
	res := r.db.WithContext(ctx).
		Model(&UserModel{}).
		Where("id = ? AND status = ?", u.ID, string(entity.UserStatusPending)).
		Updates(map[string]any{
			"status":     string(u.Status),
			"updated_at": u.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return r.missingOrActive(ctx, u.ID)
	}
	return nil
}

func (r *userGorm) missingOrActive(ctx context.Context, id uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if count == 0 {
		return usecase.ErrUserNotFound
	}
	return domain.ErrAlreadyActive
}
