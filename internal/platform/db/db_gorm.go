package db

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"registration_backend/internal/platform/config"
)

// retryInterval は接続リトライの間隔です。
const retryInterval = 3 * time.Second

// Opener は DSN から gorm.DB を開く関数です。テストで差し替えられます。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN は PostgreSQL 用の DSN を組み立てます。
// InstanceName が設定されている場合は Cloud SQL の Unix ソケットを優先します。
func BuildDSN(cfg config.DatabaseConfig) string {
	host := cfg.Host
	port := cfg.Port
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		host, port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
}

// ConnectWithRetry は timeout に達するまで retryInterval ごとに接続を試みます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// gormConfig は gorm の共通設定を返します。
// 一意制約違反の制約名を判定に使うため、TranslateError は有効にしません。
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// OpenPostgres は PostgreSQL 用の Opener です。
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

// OpenSQLite は SQLite 用の Opener です。
func OpenSQLite(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), gormConfig())
}

// Open は設定に従ってデータベースに接続し、コネクションプールを設定します。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Driver {
	case "sqlite":
		db, err = ConnectWithRetry(cfg.SQLitePath, cfg.ConnectTimeout, OpenSQLite)
	case "postgres":
		db, err = ConnectWithRetry(BuildDSN(cfg), cfg.ConnectTimeout, OpenPostgres)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite は書き込みを直列化するため、接続を1本に絞って SQLITE_BUSY を避ける
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	slog.Info("DB connection successful", "driver", cfg.Driver)
	return db, nil
}
