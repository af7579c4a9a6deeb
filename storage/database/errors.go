package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"Attendly/internal/repository"
)

// ErrDuplicateKey 唯一约束冲突，与底层驱动无关
var ErrDuplicateKey = repository.ErrDuplicateKey

const pgUniqueViolation = "23505"

// IsDuplicateKey 识别 gorm 翻译后的错误和 pg 原始错误码
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicateKey) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
