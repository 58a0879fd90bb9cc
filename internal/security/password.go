package security

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// IsBcryptHash сообщает, хранится ли пароль в виде bcrypt-хэша
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// PasswordMatches сравнивает введенный пароль с сохраненным значением.
// Открытый текст сравнивается за постоянное время, bcrypt-хэш через bcrypt.
// Пустые значения никогда не совпадают.
func PasswordMatches(stored, submitted string) bool {
	if stored == "" || submitted == "" {
		return false
	}
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(submitted)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) == 1
}

// HashPassword возвращает bcrypt-хэш для записи в settings
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
