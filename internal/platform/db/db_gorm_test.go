package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"registration_backend/internal/platform/config"
)

// TestBuildDSN_TCP はTCP接続用のDSN文字列が正しく生成されることを検証します。
func TestBuildDSN_TCP(t *testing.T) {
	t.Parallel()

	cfg := config.DatabaseConfig{
		User:     "testuser",
		Password: "testpass",
		Name:     "testdb",
		Host:     "localhost",
		Port:     "5432",
		SSLMode:  "disable",
	}

	dsn := BuildDSN(cfg)

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable TimeZone=UTC"
	assert.Equal(t, expected, dsn)
}

// TestBuildDSN_CloudSQLTakesPrecedence はInstanceNameとHost/Portが両方設定されている場合にInstanceNameが優先されることを検証します。
func TestBuildDSN_CloudSQLTakesPrecedence(t *testing.T) {
	t.Parallel()

	cfg := config.DatabaseConfig{
		User:         "testuser",
		Password:     "testpass",
		Name:         "testdb",
		Host:         "localhost",
		Port:         "6543",
		SSLMode:      "disable",
		InstanceName: "project:region:instance",
	}

	dsn := BuildDSN(cfg)

	expected := "host=/cloudsql/project:region:instance port=5432 user=testuser password=testpass dbname=testdb sslmode=disable TimeZone=UTC"
	assert.Equal(t, expected, dsn)
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attempts++
		assert.Equal(t, "test-dsn", dsn)
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 1, attempts)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// Not parallel because this test takes time due to retry sleeps

	mockDB := &gorm.DB{}
	attempts := 0
	opener := func(string) (*gorm.DB, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	// allows two retries at the 3 second interval
	db, err := ConnectWithRetry("test-dsn", 10*time.Second, opener)

	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attempts)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attempts := 0
	opener := func(string) (*gorm.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)

	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 1, attempts)
}

// TestOpen_SQLite はSQLiteファイルに接続できることを検証します。
func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	cfg := config.DatabaseConfig{
		Driver:         "sqlite",
		SQLitePath:     filepath.Join(t.TempDir(), "test.db"),
		ConnectTimeout: time.Second,
	}

	db, err := Open(cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.NoError(t, sqlDB.Ping())
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

// TestOpen_UnsupportedDriver は未対応のドライバーを拒否することを検証します。
func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(config.DatabaseConfig{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported database driver")
}
