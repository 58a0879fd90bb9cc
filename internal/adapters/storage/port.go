package storage

import (
	"context"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

// SettingAdminPassword ключ строки settings с паролем администратора
const SettingAdminPassword = "admin_password"

// CatalogRepository определяет интерфейс чтения и изменения таблиц каталога
type CatalogRepository interface {
	// Полная выборка таблиц, отсортированная по name / brand / name
	ListCategories(ctx context.Context) ([]*models.CategoryRecord, error)
	ListModels(ctx context.Context) ([]*models.ModelRecord, error)
	ListParts(ctx context.Context) ([]*models.PartRecord, error)

	// Category методы
	CreateCategory(ctx context.Context, category *models.CategoryRecord) error
	UpdateCategory(ctx context.Context, category *models.CategoryRecord) error
	DeleteCategory(ctx context.Context, id string) error

	// Model методы
	CreateModel(ctx context.Context, model *models.ModelRecord) error
	UpdateModel(ctx context.Context, model *models.ModelRecord) error
	DeleteModel(ctx context.Context, id string) error
	DeleteModelsByCategory(ctx context.Context, categoryID string) (int64, error)

	// Part методы
	CreatePart(ctx context.Context, part *models.PartRecord) error
	UpdatePart(ctx context.Context, part *models.PartRecord) error
	DeletePart(ctx context.Context, id string) error
	DeletePartsByModel(ctx context.Context, modelID string) (int64, error)
	DeletePartsByCategory(ctx context.Context, categoryID string) (int64, error)
}

// SettingsRepository определяет доступ к таблице settings
type SettingsRepository interface {
	// GetSetting возвращает значение или ErrNotFound
	GetSetting(ctx context.Context, key string) (string, error)

	// EnsureSetting записывает значение, только если ключа еще нет. Возвращает true, если запись создана.
	EnsureSetting(ctx context.Context, key, value string) (bool, error)

	// SetSetting записывает значение, перезаписывая существующее
	SetSetting(ctx context.Context, key, value string) error
}

// Repository объединяет все таблицы хранилища
type Repository interface {
	CatalogRepository
	SettingsRepository
}

// Port репозиторий вместе с управлением соединением
type Port interface {
	Repository
	interfaces.StoragePort
}
