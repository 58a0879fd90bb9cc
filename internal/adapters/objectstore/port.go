package objectstore

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey ключ содержит разделители пути или пуст
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore хранилище загруженных изображений
type ObjectStore interface {
	// Put сохраняет объект под ключом key. size = -1, если размер неизвестен.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// PublicURL возвращает адрес, по которому объект доступен витрине
	PublicURL(key string) string
}

// validKey допускает только плоские ключи без обхода каталогов
func validKey(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	for _, r := range key {
		if r == '/' || r == '\\' || r == 0 {
			return false
		}
	}
	return true
}
