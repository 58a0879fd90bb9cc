package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
)

// MemoryStorage реализация Port в памяти процесса. Используется для локального запуска
// без PostgreSQL и в тестах. Внешние ключи проверяются так же, как в схеме БД:
// без каскада, удаление родителя с дочерними строками дает ErrReference.
type MemoryStorage struct {
	mu         sync.RWMutex
	categories map[string]models.CategoryRecord
	models     map[string]models.ModelRecord
	parts      map[string]models.PartRecord
	settings   map[string]string
	now        func() time.Time
}

// NewMemoryStorage создает пустое хранилище
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		categories: make(map[string]models.CategoryRecord),
		models:     make(map[string]models.ModelRecord),
		parts:      make(map[string]models.PartRecord),
		settings:   make(map[string]string),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStorage) Close() error {
	return nil
}

// ---------------------------- ЧТЕНИЕ ----------------------------

func (m *MemoryStorage) ListCategories(ctx context.Context) ([]*models.CategoryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.CategoryRecord, 0, len(m.categories))
	for _, c := range m.categories {
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return lessByKey(result[i].Name.DE, result[j].Name.DE, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (m *MemoryStorage) ListModels(ctx context.Context) ([]*models.ModelRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.ModelRecord, 0, len(m.models))
	for _, md := range m.models {
		result = append(result, &md)
	}
	sort.Slice(result, func(i, j int) bool {
		return lessByKey(result[i].Brand, result[j].Brand, result[i].ID, result[j].ID)
	})
	return result, nil
}

func (m *MemoryStorage) ListParts(ctx context.Context) ([]*models.PartRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*models.PartRecord, 0, len(m.parts))
	for _, p := range m.parts {
		result = append(result, &p)
	}
	sort.Slice(result, func(i, j int) bool {
		return lessByKey(result[i].Name.DE, result[j].Name.DE, result[i].ID, result[j].ID)
	})
	return result, nil
}

// lessByKey повторяет ORDER BY key, id
func lessByKey(a, b, idA, idB string) bool {
	if a != b {
		return a < b
	}
	return idA < idB
}

// ---------------------------- КАТЕГОРИИ ----------------------------

func (m *MemoryStorage) CreateCategory(ctx context.Context, c *models.CategoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[c.ID]; ok {
		return fmt.Errorf("%w: category %s", ErrConflict, c.ID)
	}
	c.CreatedAt = m.now()
	c.UpdatedAt = c.CreatedAt
	m.categories[c.ID] = *c
	return nil
}

func (m *MemoryStorage) UpdateCategory(ctx context.Context, c *models.CategoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.categories[c.ID]
	if !ok {
		return fmt.Errorf("%w: category %s", ErrNotFound, c.ID)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = m.now()
	m.categories[c.ID] = *c
	return nil
}

func (m *MemoryStorage) DeleteCategory(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return fmt.Errorf("%w: categories %s", ErrNotFound, id)
	}
	for _, md := range m.models {
		if md.CategoryID == id {
			return fmt.Errorf("%w: categories %s", ErrReference, id)
		}
	}
	delete(m.categories, id)
	return nil
}

// ---------------------------- МОДЕЛИ ----------------------------

func (m *MemoryStorage) CreateModel(ctx context.Context, md *models.ModelRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.models[md.ID]; ok {
		return fmt.Errorf("%w: model %s", ErrConflict, md.ID)
	}
	if _, ok := m.categories[md.CategoryID]; !ok {
		return fmt.Errorf("%w: model %s", ErrReference, md.ID)
	}
	md.CreatedAt = m.now()
	md.UpdatedAt = md.CreatedAt
	m.models[md.ID] = *md
	return nil
}

func (m *MemoryStorage) UpdateModel(ctx context.Context, md *models.ModelRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.models[md.ID]
	if !ok {
		return fmt.Errorf("%w: model %s", ErrNotFound, md.ID)
	}
	md.CategoryID = existing.CategoryID
	md.CreatedAt = existing.CreatedAt
	md.UpdatedAt = m.now()
	m.models[md.ID] = *md
	return nil
}

func (m *MemoryStorage) DeleteModel(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.models[id]; !ok {
		return fmt.Errorf("%w: models %s", ErrNotFound, id)
	}
	for _, p := range m.parts {
		if p.ModelID == id {
			return fmt.Errorf("%w: models %s", ErrReference, id)
		}
	}
	delete(m.models, id)
	return nil
}

func (m *MemoryStorage) DeleteModelsByCategory(ctx context.Context, categoryID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, md := range m.models {
		if md.CategoryID != categoryID {
			continue
		}
		for _, p := range m.parts {
			if p.ModelID == id {
				return deleted, fmt.Errorf("%w: models %s", ErrReference, id)
			}
		}
		delete(m.models, id)
		deleted++
	}
	return deleted, nil
}

// ---------------------------- ЗАПЧАСТИ ----------------------------

func (m *MemoryStorage) CreatePart(ctx context.Context, p *models.PartRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.parts[p.ID]; ok {
		return fmt.Errorf("%w: part %s", ErrConflict, p.ID)
	}
	if _, ok := m.models[p.ModelID]; !ok {
		return fmt.Errorf("%w: part %s", ErrReference, p.ID)
	}
	p.CreatedAt = m.now()
	p.UpdatedAt = p.CreatedAt
	m.parts[p.ID] = *p
	return nil
}

func (m *MemoryStorage) UpdatePart(ctx context.Context, p *models.PartRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.parts[p.ID]
	if !ok {
		return fmt.Errorf("%w: part %s", ErrNotFound, p.ID)
	}
	p.ModelID = existing.ModelID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = m.now()
	m.parts[p.ID] = *p
	return nil
}

func (m *MemoryStorage) DeletePart(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.parts[id]; !ok {
		return fmt.Errorf("%w: parts %s", ErrNotFound, id)
	}
	delete(m.parts, id)
	return nil
}

func (m *MemoryStorage) DeletePartsByModel(ctx context.Context, modelID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, p := range m.parts {
		if p.ModelID == modelID {
			delete(m.parts, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryStorage) DeletePartsByCategory(ctx context.Context, categoryID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, p := range m.parts {
		if md, ok := m.models[p.ModelID]; ok && md.CategoryID == categoryID {
			delete(m.parts, id)
			deleted++
		}
	}
	return deleted, nil
}

// ---------------------------- НАСТРОЙКИ ----------------------------

func (m *MemoryStorage) GetSetting(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.settings[key]
	if !ok {
		return "", fmt.Errorf("%w: setting %s", ErrNotFound, key)
	}
	return value, nil
}

func (m *MemoryStorage) EnsureSetting(ctx context.Context, key, value string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.settings[key]; ok {
		return false, nil
	}
	m.settings[key] = value
	return true, nil
}

func (m *MemoryStorage) SetSetting(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings[key] = value
	return nil
}
