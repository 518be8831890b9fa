package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"registration_backend/internal/feature/registration/domain/entity"
)

var baseTime = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to initialize test database")

	// every connection to ":memory:" is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db), "failed to migrate tables")
	return db
}

// insertUser stores a pending user and returns it with its ID set.
func insertUser(t *testing.T, db *gorm.DB, email string) *entity.User {
	t.Helper()
	u, err := entity.NewUser(email, "hashed_password", baseTime)
	require.NoError(t, err)
	require.NoError(t, NewUserGorm(db).Insert(context.Background(), u))
	return u
}

// insertCode stores a pending code issued at the given time.
func insertCode(t *testing.T, db *gorm.DB, u *entity.User, value string, at time.Time) *entity.ActivationCode {
	t.Helper()
	c, err := entity.IssueActivationCode(u, value, at, 10*time.Minute)
	require.NoError(t, err)
	require.NoError(t, NewActivationCodeGorm(db).Insert(context.Background(), c))
	return c
}
