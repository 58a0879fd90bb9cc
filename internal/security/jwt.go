package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrEmptySecret  = errors.New("session secret is empty")
)

// AdminSubject субъект сессионного токена администратора
const AdminSubject = "admin"

// SessionManager выпускает и проверяет HS256 токены админ-сессии
type SessionManager struct {
	secret     []byte
	expiration time.Duration
	issuer     string
	now        func() time.Time
}

// Claims содержимое токена сессии
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// NewSessionManager создает менеджер сессий
func NewSessionManager(secret string, expiration time.Duration, issuer string) (*SessionManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if expiration <= 0 {
		return nil, fmt.Errorf("invalid session ttl: %s", expiration)
	}

	return &SessionManager{
		secret:     []byte(secret),
		expiration: expiration,
		issuer:     issuer,
		now:        time.Now,
	}, nil
}

// Issue подписывает токен для subject и возвращает момент его истечения
func (m *SessionManager) Issue(subject string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.expiration)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   subject,
		},
		Role: AdminSubject,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate проверяет подпись, издателя и срок действия
func (m *SessionManager) Validate(tokenString string) error {
	_, err := m.Parse(tokenString)
	return err
}

// Parse проверяет токен и возвращает его claims
func (m *SessionManager) Parse(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != AdminSubject {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
