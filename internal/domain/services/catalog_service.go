package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	catalogCachePattern = "catalog:*"
	catalogRawCacheKey  = "catalog:raw"
)

func resolvedCacheKey(locale models.Locale) string {
	return "catalog:resolved:" + locale.String()
}

// CatalogService собирает дерево каталога категория -> модели -> запчасти.
// Сервис только читает хранилище.
type CatalogService struct {
	repository storage.CatalogRepository
	cache      interfaces.CachePort
	cacheTTL   time.Duration
	logger     interfaces.LoggerPort

	// generation растет при каждом Invalidate. Чтение, начатое до сброса,
	// не кладет свой снимок в кэш.
	generation atomic.Uint64
}

// NewCatalogService создает сервис. cache может быть nil, тогда каждое чтение идет в хранилище.
func NewCatalogService(repository storage.CatalogRepository, cache interfaces.CachePort, cacheTTL time.Duration, logger interfaces.LoggerPort) *CatalogService {
	return &CatalogService{
		repository: repository,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// snapshot строки всех трех таблиц, отсортированные для витрины
type snapshot struct {
	categories []*models.CategoryRecord
	models     []*models.ModelRecord
	parts      []*models.PartRecord
	// degraded означает, что модели или запчасти не прочитались и заменены пустыми списками
	degraded bool
}

// Resolved возвращает дерево с текстами на языке locale
func (s *CatalogService) Resolved(ctx context.Context, locale models.Locale) ([]models.ResolvedCategory, error) {
	key := resolvedCacheKey(locale)

	var tree []models.ResolvedCategory
	if s.readCache(ctx, key, &tree) {
		catalogReads.WithLabelValues("resolved", "cache").Inc()
		return tree, nil
	}

	gen := s.generation.Load()
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	tree = assembleResolved(snap, locale)
	catalogReads.WithLabelValues("resolved", "store").Inc()

	s.storeSnapshot(ctx, key, tree, snap, gen)
	return tree, nil
}

// Raw возвращает дерево со всеми языковыми вариантами полей для редактора
func (s *CatalogService) Raw(ctx context.Context) ([]models.RawCategory, error) {
	var tree []models.RawCategory
	if s.readCache(ctx, catalogRawCacheKey, &tree) {
		catalogReads.WithLabelValues("raw", "cache").Inc()
		return tree, nil
	}

	gen := s.generation.Load()
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	tree = assembleRaw(snap)
	catalogReads.WithLabelValues("raw", "store").Inc()

	s.storeSnapshot(ctx, catalogRawCacheKey, tree, snap, gen)
	return tree, nil
}

// Category возвращает одну категорию с моделями
func (s *CatalogService) Category(ctx context.Context, locale models.Locale, categoryID string) (*models.ResolvedCategory, error) {
	tree, err := s.Resolved(ctx, locale)
	if err != nil {
		return nil, err
	}
	for i := range tree {
		if tree[i].ID == categoryID {
			return &tree[i], nil
		}
	}
	return nil, fmt.Errorf("%w: category %s", ErrNotFound, categoryID)
}

// Model возвращает модель внутри категории
func (s *CatalogService) Model(ctx context.Context, locale models.Locale, categoryID, modelID string) (*models.ResolvedModel, error) {
	category, err := s.Category(ctx, locale, categoryID)
	if err != nil {
		return nil, err
	}
	for i := range category.Models {
		if category.Models[i].ID == modelID {
			return &category.Models[i], nil
		}
	}
	return nil, fmt.Errorf("%w: model %s", ErrNotFound, modelID)
}

// Part возвращает запчасть внутри модели
func (s *CatalogService) Part(ctx context.Context, locale models.Locale, categoryID, modelID, partID string) (*models.ResolvedPart, error) {
	model, err := s.Model(ctx, locale, categoryID, modelID)
	if err != nil {
		return nil, err
	}
	for i := range model.Parts {
		if model.Parts[i].ID == partID {
			return &model.Parts[i], nil
		}
	}
	return nil, fmt.Errorf("%w: part %s", ErrNotFound, partID)
}

// Invalidate сбрасывает все закэшированные деревья. Ошибка кэша только логируется.
func (s *CatalogService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, catalogCachePattern); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось сбросить кэш каталога",
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// load читает три таблицы. Ошибка категорий фатальна, ошибки моделей и запчастей
// превращаются в пустые списки.
func (s *CatalogService) load(ctx context.Context) (*snapshot, error) {
	categories, err := s.repository.ListCategories(ctx)
	if err != nil {
		s.logger.ErrorWithContext(ctx, "Ошибка чтения категорий",
			interfaces.LogField{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	degraded := false
	modelRows, err := s.repository.ListModels(ctx)
	if err != nil {
		s.logger.WarnWithContext(ctx, "Ошибка чтения моделей, каталог будет без моделей",
			interfaces.LogField{Key: "error", Value: err.Error()})
		modelRows = nil
		degraded = true
	}

	parts, err := s.repository.ListParts(ctx)
	if err != nil {
		s.logger.WarnWithContext(ctx, "Ошибка чтения запчастей, каталог будет без запчастей",
			interfaces.LogField{Key: "error", Value: err.Error()})
		parts = nil
		degraded = true
	}

	snap := &snapshot{categories: categories, models: modelRows, parts: parts, degraded: degraded}
	sortSnapshot(snap)
	return snap, nil
}

// storeSnapshot кладет дерево в кэш, если снимок полный и с начала чтения
// не было Invalidate
func (s *CatalogService) storeSnapshot(ctx context.Context, key string, value interface{}, snap *snapshot, gen uint64) {
	if snap.degraded {
		return
	}
	if s.generation.Load() != gen {
		s.logger.DebugWithContext(ctx, "Каталог изменился во время чтения, кэш не обновлен",
			interfaces.LogField{Key: "key", Value: key})
		return
	}
	s.writeCache(ctx, key, value)
	// Invalidate между проверкой и записью
	if s.generation.Load() != gen {
		_ = s.cache.Delete(ctx, key)
	}
}

// sortSnapshot упорядочивает категории по имени, модели по бренду, запчасти по имени.
// Сравнение по немецким правилам, сортировка стабильная.
func sortSnapshot(snap *snapshot) {
	// collate.Collator не потокобезопасен, поэтому создается на каждый вызов
	col := collate.New(language.German)

	sort.SliceStable(snap.categories, func(i, j int) bool {
		return col.CompareString(snap.categories[i].Name.DE, snap.categories[j].Name.DE) < 0
	})
	sort.SliceStable(snap.models, func(i, j int) bool {
		return col.CompareString(snap.models[i].Brand, snap.models[j].Brand) < 0
	})
	sort.SliceStable(snap.parts, func(i, j int) bool {
		return col.CompareString(snap.parts[i].Name.DE, snap.parts[j].Name.DE) < 0
	})
}

// assembleResolved соединяет таблицы по category_id и model_id. Сироты отбрасываются.
func assembleResolved(snap *snapshot, locale models.Locale) []models.ResolvedCategory {
	partsByModel := make(map[string][]models.ResolvedPart, len(snap.models))
	for _, p := range snap.parts {
		partsByModel[p.ModelID] = append(partsByModel[p.ModelID], models.ResolvePart(p, locale))
	}

	modelsByCategory := make(map[string][]models.ResolvedModel, len(snap.categories))
	for _, m := range snap.models {
		resolved := models.ResolveModel(m, locale)
		if parts, ok := partsByModel[m.ID]; ok {
			resolved.Parts = parts
		}
		modelsByCategory[m.CategoryID] = append(modelsByCategory[m.CategoryID], resolved)
	}

	tree := make([]models.ResolvedCategory, 0, len(snap.categories))
	for _, c := range snap.categories {
		resolved := models.ResolveCategory(c, locale)
		if ms, ok := modelsByCategory[c.ID]; ok {
			resolved.Models = ms
		}
		tree = append(tree, resolved)
	}
	return tree
}

func assembleRaw(snap *snapshot) []models.RawCategory {
	partsByModel := make(map[string][]models.RawPart, len(snap.models))
	for _, p := range snap.parts {
		partsByModel[p.ModelID] = append(partsByModel[p.ModelID], models.RawPartFrom(p))
	}

	modelsByCategory := make(map[string][]models.RawModel, len(snap.categories))
	for _, m := range snap.models {
		raw := models.RawModelFrom(m)
		if parts, ok := partsByModel[m.ID]; ok {
			raw.Parts = parts
		}
		modelsByCategory[m.CategoryID] = append(modelsByCategory[m.CategoryID], raw)
	}

	tree := make([]models.RawCategory, 0, len(snap.categories))
	for _, c := range snap.categories {
		raw := models.RawCategoryFrom(c)
		if ms, ok := modelsByCategory[c.ID]; ok {
			raw.Models = ms
		}
		tree = append(tree, raw)
	}
	return tree
}

// readCache возвращает true, если значение найдено и разобрано
func (s *CatalogService) readCache(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, interfaces.ErrCacheMiss) {
			s.logger.WarnWithContext(ctx, "Ошибка чтения кэша каталога",
				interfaces.LogField{Key: "key", Value: key},
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.WarnWithContext(ctx, "Поврежденное значение в кэше каталога",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
		return false
	}
	return true
}

func (s *CatalogService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.WarnWithContext(ctx, "Ошибка записи кэша каталога",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}
