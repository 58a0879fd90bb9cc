package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Ошибки слоя хранилища
var (
	// ErrNotFound запись не найдена или ни одна строка не затронута
	ErrNotFound = errors.New("record not found")
	// ErrConflict запись с таким id уже существует
	ErrConflict = errors.New("record already exists")
	// ErrReference ссылка на несуществующую родительскую запись
	ErrReference = errors.New("referenced record does not exist")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// pgErrorCode возвращает SQLSTATE ошибки PostgreSQL или пустую строку
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapWriteError переводит ошибки записи PostgreSQL в ошибки слоя
func mapWriteError(err error) error {
	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return ErrConflict
	case pgForeignKeyViolation:
		return ErrReference
	}
	return nil
}
