// Package adapters はregistrationフィーチャーのリポジトリ・通知の実装を提供します。
package adapters

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"registration_backend/internal/feature/registration/domain/entity"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           uint      `gorm:"primaryKey"`
	PublicID     string    `gorm:"size:36;uniqueIndex;not null"` // UUID part only, without the "usr_" prefix
	Email        string    `gorm:"size:255;uniqueIndex:idx_users_email;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Status       string    `gorm:"size:16;not null;index"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() (*entity.User, error) {
	id, err := uuid.Parse(m.PublicID)
	if err != nil {
		return nil, fmt.Errorf("user %d has corrupt public id: %w", m.ID, err)
	}
	status, err := entity.ParseUserStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &entity.User{
		ID:           m.ID,
		PublicID:     entity.PublicIDFromUUID(id),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Status:       status,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		PublicID:     u.PublicID.UUID().String(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// ActivationCodeModel is the GORM model for the activation_codes table.
type ActivationCodeModel struct {
	ID        uint       `gorm:"primaryKey"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_activation_codes_user_code,priority:1"`
	User      *UserModel `gorm:"constraint:OnDelete:CASCADE"`
	Code      string     `gorm:"size:8;not null;uniqueIndex:idx_activation_codes_user_code,priority:2"`
	ExpiresAt time.Time  `gorm:"not null"`
	Status    string     `gorm:"size:16;not null"`
	CreatedAt time.Time  `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime:false"`
}

// TableName returns the table name for GORM.
func (ActivationCodeModel) TableName() string {
	return "activation_codes"
}

// ToEntity converts the GORM model to a domain entity.
func (m *ActivationCodeModel) ToEntity() (*entity.ActivationCode, error) {
	status, err := entity.ParseActivationCodeStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return &entity.ActivationCode{
		ID:        m.ID,
		UserID:    m.UserID,
		Code:      m.Code,
		ExpiresAt: m.ExpiresAt,
		Status:    status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

// ActivationCodeModelFromEntity converts a domain entity to a GORM model.
func ActivationCodeModelFromEntity(c *entity.ActivationCode) *ActivationCodeModel {
	return &ActivationCodeModel{
		ID:        c.ID,
		UserID:    c.UserID,
		Code:      c.Code,
		ExpiresAt: c.ExpiresAt,
		Status:    string(c.Status),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// AutoMigrate creates or updates the registration tables.
func AutoMigrate(db interface{ AutoMigrate(dst ...any) error }) error {
	if err := db.AutoMigrate(&UserModel{}, &ActivationCodeModel{}); err != nil {
		return fmt.Errorf("failed to migrate registration tables: %w", err)
	}
	return nil
}
