package services

import (
	"errors"
	"fmt"
)

// Ошибки бизнес-слоя. Обработчики HTTP сопоставляют их со статусами.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrStoreFailure      = errors.New("store failure")
	ErrUnknownAction     = errors.New("unknown action")
	ErrMailerUnavailable = errors.New("mailer is not configured")
	ErrDelivery          = errors.New("email delivery failed")
	ErrSessionsDisabled  = errors.New("admin sessions are disabled")
)

// ValidationError ошибка проверки конкретного поля
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// errorCode короткое имя класса ошибки для метрик и логов
func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	default:
		return "error"
	}
}
