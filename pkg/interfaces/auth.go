package interfaces

import (
	"time"
)

// TokenPort определяет интерфейс выпуска и проверки сессионных токенов администратора
type TokenPort interface {
	// Issue выпускает подписанный токен для субъекта и возвращает момент его истечения
	Issue(subject string) (string, time.Time, error)

	// Validate проверяет подпись и срок действия токена
	Validate(token string) error
}
