package cache

import (
	"context"
	"path"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	gocache "github.com/patrickmn/go-cache"
)

const memoryDriver = "memory"

// MemoryCache реализация CachePort в памяти процесса для одного инстанса
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache создает кэш с TTL по умолчанию и периодической очисткой
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{store: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := m.store.Get(key)
	if !ok {
		return nil, observe(memoryDriver, "get", interfaces.ErrCacheMiss)
	}
	data, _ := val.([]byte)
	return data, observe(memoryDriver, "get", nil)
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, expiration time.Duration) error {
	if expiration == 0 {
		expiration = gocache.DefaultExpiration
	}
	// копия защищает кэш от изменения буфера вызывающим кодом
	buf := make([]byte, len(value))
	copy(buf, value)
	m.store.Set(key, buf, expiration)
	return observe(memoryDriver, "set", nil)
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.store.Delete(key)
	return observe(memoryDriver, "delete", nil)
}

// DeleteByPattern поддерживает glob-шаблоны в стиле Redis (*, ?, [..])
func (m *MemoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	for key := range m.store.Items() {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return observe(memoryDriver, "delete_pattern", err)
		}
		if matched {
			m.store.Delete(key)
		}
	}
	return observe(memoryDriver, "delete_pattern", nil)
}

func (m *MemoryCache) Close() error {
	m.store.Flush()
	return nil
}
