package utils

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// GenerateConnectionString собирает DSN в формате key=value для pgxpool
func GenerateConnectionString(
	host, user, password, dbName, sslMode string,
	port, poolSize int,
	timeout time.Duration,
) (string, error) {
	if err := validateConnectionParams(host, user, password, dbName, sslMode, port); err != nil {
		return "", err
	}
	if timeout < 0 {
		return "", ErrStorageInvalidTimeout
	}
	if poolSize < 0 {
		return "", ErrStorageInvalidPoolSize
	}

	var conStr strings.Builder

	conStr.WriteString("host=")
	conStr.WriteString(host)
	conStr.WriteString(" port=")
	conStr.WriteString(strconv.Itoa(port))
	conStr.WriteString(" user=")
	conStr.WriteString(user)
	conStr.WriteString(" password=")
	conStr.WriteString(quoteValue(password))
	conStr.WriteString(" dbname=")
	conStr.WriteString(dbName)
	conStr.WriteString(" sslmode=")
	conStr.WriteString(sslMode)

	if timeout > 0 {
		conStr.WriteString(" connect_timeout=")
		conStr.WriteString(strconv.Itoa(int(timeout.Seconds())))
	}
	if poolSize > 0 {
		conStr.WriteString(" pool_max_conns=")
		conStr.WriteString(strconv.Itoa(poolSize))
	}

	return conStr.String(), nil
}

// GenerateMigrationURL собирает URL pgx5:// для golang-migrate
func GenerateMigrationURL(host, user, password, dbName, sslMode string, port int) (string, error) {
	if err := validateConnectionParams(host, user, password, dbName, sslMode, port); err != nil {
		return "", err
	}

	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + dbName,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String(), nil
}

func validateConnectionParams(host, user, password, dbName, sslMode string, port int) error {
	if host == "" {
		return ErrStorageEmptyHostName
	}
	if port <= 0 || port > 65535 {
		return ErrStorageInvalidPortNumber
	}
	if user == "" {
		return ErrStorageEmptyUsername
	}
	if password == "" {
		return ErrStorageEmptyPassword
	}
	if dbName == "" {
		return ErrStorageInvalidDatabaseName
	}
	if sslMode == "" {
		return ErrStorageInvalidSslMode
	}
	return nil
}

// quoteValue экранирует значение DSN, если в нем есть пробелы или кавычки
func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
