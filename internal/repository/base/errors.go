package base

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeExclusionViolation  = "23P01"
)

// UniqueViolation возвращает имя нарушенного уникального ограничения или пустую строку
func UniqueViolation(err error) string {
	return constraint(err, codeUniqueViolation)
}

// ForeignKeyViolation возвращает имя нарушенного внешнего ключа или пустую строку
func ForeignKeyViolation(err error) string {
	return constraint(err, codeForeignKeyViolation)
}

// ExclusionViolation возвращает имя нарушенного EXCLUDE ограничения или пустую строку
func ExclusionViolation(err error) string {
	return constraint(err, codeExclusionViolation)
}

func constraint(err error, code string) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == code {
		return pgErr.ConstraintName
	}
	return ""
}
