package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"registration_backend/internal/feature/registration/domain"
	"registration_backend/internal/feature/registration/domain/entity"
	"registration_backend/internal/feature/registration/usecase"
)

const latestCodeOrder = "created_at DESC, CASE WHEN status = '" + string(entity.CodeStatusPending) + "' THEN 0 ELSE 1 END, id DESC"

// activationCodeGorm はActivationCodeRepositoryインターフェースのGORM実装です。
type activationCodeGorm struct {
	db *gorm.DB
}

var _ usecase.ActivationCodeRepository = (*activationCodeGorm)(nil)

// NewActivationCodeGorm は activationCodeGorm の新しいインスタンスを生成します。
func NewActivationCodeGorm(db *gorm.DB) *activationCodeGorm {
	return &activationCodeGorm{db: db}
}

// Insert はコードを保存します。
// 同じユーザーに同じ値が過去に発行されていた場合は、その行を新しい期限・状態で上書きします (UPSERT)。
func (r *activationCodeGorm) Insert(ctx context.Context, c *entity.ActivationCode) error {
	m := ActivationCodeModelFromEntity(c)
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at", "status", "created_at", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return fmt.Errorf("failed to insert activation code: %w", err)
	}
	c.ID = m.ID
	return nil
}

// FindLatestForUser はユーザーに最後に発行されたコードを返します。
// 同時刻に発行されたコードがある場合は pending のもの、次に ID の大きいものを優先します。
func (r *activationCodeGorm) FindLatestForUser(ctx context.Context, userID uint) (*entity.ActivationCode, error) {
	var m ActivationCodeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order(latestCodeOrder).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to query activation code: %w", err)
	}
	return m.ToEntity()
}

// FindByValue はユーザーに発行された指定の値のコードを返します。
func (r *activationCodeGorm) FindByValue(ctx context.Context, userID uint, code string) (*entity.ActivationCode, error) {
	var m ActivationCodeModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND code = ?", userID, code).
		Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to query activation code: %w", err)
	}
	return m.ToEntity()
}

// Update はコードのステータスを保存します。
// 更新は pending の行に限定され、対象がない場合は domain.ErrCodeAlreadyUsed を返します。
func (r *activationCodeGorm) Update(ctx context.Context, c *entity.ActivationCode) error {
	res := r.db.WithContext(ctx).
		Model(&ActivationCodeModel{}).
		Where("id = ? AND status = ?", c.ID, string(entity.CodeStatusPending)).
		Updates(map[string]any{
			"status":     string(c.Status),
			"updated_at": c.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update activation code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrCodeAlreadyUsed
	}
	return nil
}

// InvalidateOutstandingForUser はユーザーの pending なコードをすべて expired にします。
func (r *activationCodeGorm) InvalidateOutstandingForUser(ctx context.Context, userID uint, now time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&ActivationCodeModel{}).
		Where("user_id = ? AND status = ?", userID, string(entity.CodeStatusPending)).
		Updates(map[string]any{
			"status":     string(entity.CodeStatusExpired),
			"updated_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to invalidate activation codes: %w", err)
	}
	return nil
}
