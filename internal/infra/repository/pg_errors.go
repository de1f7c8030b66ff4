package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// 一意制約違反（email・session_keyなど）の判定
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
