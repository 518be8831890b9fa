package adapters

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// pgUniqueViolation は PostgreSQL の unique_violation の SQLSTATE です。
const pgUniqueViolation = "23505"

// users.email の一意インデックス名と、SQLite のエラーメッセージに現れるカラム名です。
const (
	usersEmailIndex  = "idx_users_email"
	usersEmailColumn = "users.email"
)

// isUniqueViolation は一意制約違反かどうかを判定します。
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// isEmailConflict は users.email の一意制約違反かどうかを判定します。
// public_id など他の一意制約の違反は false です。
// gorm の TranslateError は制約名を落とすため、ドライバーのエラーをそのまま判定します。
func isEmailConflict(err error) bool {
	if !isUniqueViolation(err) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName == usersEmailIndex
	}
	// "UNIQUE constraint failed: users.email"
	return strings.Contains(err.Error(), usersEmailColumn)
}
