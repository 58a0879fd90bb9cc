package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/tx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStorage реализация Port для PostgreSQL
type CatalogStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage создает пул соединений и проверяет доступность базы
func NewPostgresStorage(ctx context.Context, connectionString string) (*CatalogStorage, error) {
	pool, err := pgxpool.New(ctx, connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return NewPostgresStorageWithPool(ctx, pool)
}

// NewPostgresStorageWithPool оборачивает готовый пул
func NewPostgresStorageWithPool(ctx context.Context, pool *pgxpool.Pool) (*CatalogStorage, error) {
	if pool == nil {
		return nil, errors.New("pool is nil")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &CatalogStorage{pool: pool}, nil
}

// Pool возвращает пул для менеджера транзакций
func (r *CatalogStorage) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping проверяет соединение с БД
func (r *CatalogStorage) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close закрывает соединение с БД
func (r *CatalogStorage) Close() error {
	r.pool.Close()
	return nil
}

type executor interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// getExecutor возвращает транзакцию из контекста или пул
func (r *CatalogStorage) getExecutor(ctx context.Context) executor {
	if t, ok := tx.GetTxFromContext(ctx); ok {
		return t
	}
	return r.pool
}

// nullable превращает пустой перевод в NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ---------------------------- ЧТЕНИЕ ----------------------------

// ListCategories возвращает все категории, отсортированные по имени
func (r *CatalogStorage) ListCategories(ctx context.Context) ([]*models.CategoryRecord, error) {
	query := `
		SELECT id, name, COALESCE(name_en, ''), COALESCE(name_pl, ''),
			description, COALESCE(description_en, ''), COALESCE(description_pl, ''),
			created_at, updated_at
		FROM categories
		ORDER BY name, id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var result []*models.CategoryRecord
	for rows.Next() {
		c := &models.CategoryRecord{}
		if err := rows.Scan(
			&c.ID, &c.Name.DE, &c.Name.EN, &c.Name.PL,
			&c.Description.DE, &c.Description.EN, &c.Description.PL,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return result, nil
}

// ListModels возвращает все модели, отсортированные по бренду
func (r *CatalogStorage) ListModels(ctx context.Context) ([]*models.ModelRecord, error) {
	query := `
		SELECT id, category_id, brand, designation,
			description, COALESCE(description_en, ''), COALESCE(description_pl, ''),
			created_at, updated_at
		FROM models
		ORDER BY brand, id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer rows.Close()

	var result []*models.ModelRecord
	for rows.Next() {
		m := &models.ModelRecord{}
		if err := rows.Scan(
			&m.ID, &m.CategoryID, &m.Brand, &m.Designation,
			&m.Description.DE, &m.Description.EN, &m.Description.PL,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan model: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate models: %w", err)
	}

	return result, nil
}

// ListParts возвращает все запчасти, отсортированные по имени
func (r *CatalogStorage) ListParts(ctx context.Context) ([]*models.PartRecord, error) {
	query := `
		SELECT id, model_id, name, COALESCE(name_en, ''), COALESCE(name_pl, ''),
			description, COALESCE(description_en, ''), COALESCE(description_pl, ''),
			image, created_at, updated_at
		FROM parts
		ORDER BY name, id
	`

	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts: %w", err)
	}
	defer rows.Close()

	var result []*models.PartRecord
	for rows.Next() {
		p := &models.PartRecord{}
		if err := rows.Scan(
			&p.ID, &p.ModelID, &p.Name.DE, &p.Name.EN, &p.Name.PL,
			&p.Description.DE, &p.Description.EN, &p.Description.PL,
			&p.Image, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate parts: %w", err)
	}

	return result, nil
}

// ---------------------------- КАТЕГОРИИ ----------------------------

// CreateCategory вставляет новую категорию
func (r *CatalogStorage) CreateCategory(ctx context.Context, c *models.CategoryRecord) error {
	query := `
		INSERT INTO categories (id, name, name_en, name_pl, description, description_en, description_pl)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query,
		c.ID, c.Name.DE, nullable(c.Name.EN), nullable(c.Name.PL),
		c.Description.DE, nullable(c.Description.EN), nullable(c.Description.PL),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return fmt.Errorf("%w: category %s", mapped, c.ID)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// UpdateCategory перезаписывает все поля категории
func (r *CatalogStorage) UpdateCategory(ctx context.Context, c *models.CategoryRecord) error {
	query := `
		UPDATE categories
		SET name = $2, name_en = $3, name_pl = $4,
			description = $5, description_en = $6, description_pl = $7,
			updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query,
		c.ID, c.Name.DE, nullable(c.Name.EN), nullable(c.Name.PL),
		c.Description.DE, nullable(c.Description.EN), nullable(c.Description.PL),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: category %s", ErrNotFound, c.ID)
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory удаляет только саму категорию. Дочерние строки удаляет сервис.
func (r *CatalogStorage) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "categories", id)
}

// ---------------------------- МОДЕЛИ ----------------------------

// CreateModel вставляет новую модель
func (r *CatalogStorage) CreateModel(ctx context.Context, m *models.ModelRecord) error {
	query := `
		INSERT INTO models (id, category_id, brand, designation, description, description_en, description_pl)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query,
		m.ID, m.CategoryID, m.Brand, m.Designation,
		m.Description.DE, nullable(m.Description.EN), nullable(m.Description.PL),
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return fmt.Errorf("%w: model %s", mapped, m.ID)
		}
		return fmt.Errorf("failed to create model: %w", err)
	}
	return nil
}

// UpdateModel перезаписывает редактируемые поля модели, category_id не меняется
func (r *CatalogStorage) UpdateModel(ctx context.Context, m *models.ModelRecord) error {
	query := `
		UPDATE models
		SET brand = $2, designation = $3,
			description = $4, description_en = $5, description_pl = $6,
			updated_at = now()
		WHERE id = $1
		RETURNING category_id, created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query,
		m.ID, m.Brand, m.Designation,
		m.Description.DE, nullable(m.Description.EN), nullable(m.Description.PL),
	).Scan(&m.CategoryID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: model %s", ErrNotFound, m.ID)
		}
		return fmt.Errorf("failed to update model: %w", err)
	}
	return nil
}

// DeleteModel удаляет модель без дочерних запчастей
func (r *CatalogStorage) DeleteModel(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "models", id)
}

// DeleteModelsByCategory удаляет все модели категории
func (r *CatalogStorage) DeleteModelsByCategory(ctx context.Context, categoryID string) (int64, error) {
	tag, err := r.getExecutor(ctx).Exec(ctx, `DELETE FROM models WHERE category_id = $1`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete models of category %s: %w", categoryID, err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------- ЗАПЧАСТИ ----------------------------

// CreatePart вставляет новую запчасть
func (r *CatalogStorage) CreatePart(ctx context.Context, p *models.PartRecord) error {
	query := `
		INSERT INTO parts (id, model_id, name, name_en, name_pl, description, description_en, description_pl, image)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query,
		p.ID, p.ModelID, p.Name.DE, nullable(p.Name.EN), nullable(p.Name.PL),
		p.Description.DE, nullable(p.Description.EN), nullable(p.Description.PL), p.Image,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return fmt.Errorf("%w: part %s", mapped, p.ID)
		}
		return fmt.Errorf("failed to create part: %w", err)
	}
	return nil
}

// UpdatePart перезаписывает редактируемые поля запчасти, model_id не меняется
func (r *CatalogStorage) UpdatePart(ctx context.Context, p *models.PartRecord) error {
	query := `
		UPDATE parts
		SET name = $2, name_en = $3, name_pl = $4,
			description = $5, description_en = $6, description_pl = $7,
			image = $8, updated_at = now()
		WHERE id = $1
		RETURNING model_id, created_at, updated_at
	`

	err := r.getExecutor(ctx).QueryRow(ctx, query,
		p.ID, p.Name.DE, nullable(p.Name.EN), nullable(p.Name.PL),
		p.Description.DE, nullable(p.Description.EN), nullable(p.Description.PL), p.Image,
	).Scan(&p.ModelID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: part %s", ErrNotFound, p.ID)
		}
		return fmt.Errorf("failed to update part: %w", err)
	}
	return nil
}

// DeletePart удаляет запчасть
func (r *CatalogStorage) DeletePart(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "parts", id)
}

// DeletePartsByModel удаляет все запчасти модели
func (r *CatalogStorage) DeletePartsByModel(ctx context.Context, modelID string) (int64, error) {
	tag, err := r.getExecutor(ctx).Exec(ctx, `DELETE FROM parts WHERE model_id = $1`, modelID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete parts of model %s: %w", modelID, err)
	}
	return tag.RowsAffected(), nil
}

// DeletePartsByCategory удаляет запчасти всех моделей категории
func (r *CatalogStorage) DeletePartsByCategory(ctx context.Context, categoryID string) (int64, error) {
	query := `
		DELETE FROM parts
		WHERE model_id IN (SELECT id FROM models WHERE category_id = $1)
	`

	tag, err := r.getExecutor(ctx).Exec(ctx, query, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete parts of category %s: %w", categoryID, err)
	}
	return tag.RowsAffected(), nil
}

// deleteByID удаляет строку таблицы по первичному ключу. Имя таблицы - только из констант пакета.
func (r *CatalogStorage) deleteByID(ctx context.Context, table, id string) error {
	tag, err := r.getExecutor(ctx).Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		if mapped := mapWriteError(err); mapped != nil {
			return fmt.Errorf("%w: %s %s", mapped, table, id)
		}
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, table, id)
	}
	return nil
}

// ---------------------------- НАСТРОЙКИ ----------------------------

// GetSetting возвращает значение настройки
func (r *CatalogStorage) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.getExecutor(ctx).QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: setting %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// EnsureSetting вставляет настройку, если ее еще нет
func (r *CatalogStorage) EnsureSetting(ctx context.Context, key, value string) (bool, error) {
	tag, err := r.getExecutor(ctx).Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2) ON CONFLICT (key) DO NOTHING`, key, value)
	if err != nil {
		return false, fmt.Errorf("failed to ensure setting %s: %w", key, err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetSetting вставляет или перезаписывает настройку
func (r *CatalogStorage) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.getExecutor(ctx).Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
