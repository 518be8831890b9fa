package adapters

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"registration_backend/internal/feature/registration/domain/entity"
	"registration_backend/internal/feature/registration/usecase"
)

// setupPostgresMock は go-sqlmock を背後に持つ PostgreSQL 方言の gorm.DB を返します。
func setupPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserGorm_Insert_PostgresUniqueViolation(t *testing.T) {
	db, mock := setupPostgresMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})
	mock.ExpectRollback()

	u, err := entity.NewUser("alice@example.com", "hash", baseTime)
	require.NoError(t, err)

	err = NewUserGorm(db).Insert(context.Background(), u)

	assert.ErrorIs(t, err, usecase.ErrEmailAlreadyRegistered)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGorm_Insert_PostgresPublicIDCollision(t *testing.T) {
	db, mock := setupPostgresMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_public_id"})
	mock.ExpectRollback()

	u, err := entity.NewUser("alice@example.com", "hash", baseTime)
	require.NoError(t, err)

	err = NewUserGorm(db).Insert(context.Background(), u)

	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrEmailAlreadyRegistered)
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "idx_users_public_id", pgErr.ConstraintName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGorm_Insert_PostgresOtherError(t *testing.T) {
	db, mock := setupPostgresMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(errors.New("connection reset by peer"))
	mock.ExpectRollback()

	u, err := entity.NewUser("alice@example.com", "hash", baseTime)
	require.NoError(t, err)

	err = NewUserGorm(db).Insert(context.Background(), u)

	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrEmailAlreadyRegistered)
	assert.Contains(t, err.Error(), "connection reset by peer")
}

func TestIsEmailConflict(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantUnique bool
		wantEmail  bool
	}{
		{"postgres email index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}, true, true},
		{"wrapped postgres email index", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}), true, true},
		{"postgres public id index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_public_id"}, true, false},
		{"postgres foreign key violation", &pgconn.PgError{Code: "23503", ConstraintName: "idx_users_email"}, false, false},
		{"sqlite unique without column", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true, false},
		{"sqlite primary key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintPrimaryKey}, true, false},
		{"sqlite not null", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintNotNull}, false, false},
		{"translated duplicate key", gorm.ErrDuplicatedKey, false, false},
		{"other", errors.New("UNIQUE constraint failed: users.email"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantUnique, isUniqueViolation(tt.err))
			assert.Equal(t, tt.wantEmail, isEmailConflict(tt.err))
		})
	}
}
