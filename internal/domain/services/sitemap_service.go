package services

import (
	"context"
	"strings"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

// staticPages страницы витрины без данных каталога, "" - главная
var staticPages = []string{"", "/categories", "/about", "/contact"}

// SitemapService строит карту сайта витрины для всех языков
type SitemapService struct {
	repository storage.CatalogRepository
	baseURL    string
	logger     interfaces.LoggerPort
	now        func() time.Time
}

// NewSitemapService создает сервис. baseURL - адрес витрины без завершающего слэша.
func NewSitemapService(repository storage.CatalogRepository, baseURL string, logger interfaces.LoggerPort) *SitemapService {
	return &SitemapService{
		repository: repository,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		now:        time.Now,
	}
}

// Entries возвращает статические страницы и страницы категорий, моделей и запчастей.
// Ошибка чтения таблицы пропускает только ее страницы.
func (s *SitemapService) Entries(ctx context.Context) []models.SitemapEntry {
	now := s.now().UTC()

	var entries []models.SitemapEntry
	for _, page := range staticPages {
		freq, priority := "weekly", 0.8
		if page == "" {
			freq, priority = "daily", 1.0
		}
		entries = s.appendPage(entries, page, now, freq, priority)
	}

	categories, err := s.repository.ListCategories(ctx)
	if err != nil {
		s.logWarn(ctx, "categories", err)
		return entries
	}
	listed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		listed[c.ID] = struct{}{}
		entries = s.appendPage(entries, "/categories/"+c.ID, lastModified(c.UpdatedAt, now), "weekly", 0.7)
	}

	modelRows, err := s.repository.ListModels(ctx)
	if err != nil {
		s.logWarn(ctx, "models", err)
		return entries
	}
	categoryOf := make(map[string]string, len(modelRows))
	for _, m := range modelRows {
		if _, ok := listed[m.CategoryID]; !ok {
			continue
		}
		categoryOf[m.ID] = m.CategoryID
		entries = s.appendPage(entries, "/categories/"+m.CategoryID+"/"+m.ID, lastModified(m.UpdatedAt, now), "weekly", 0.6)
	}

	parts, err := s.repository.ListParts(ctx)
	if err != nil {
		s.logWarn(ctx, "parts", err)
		return entries
	}
	for _, p := range parts {
		categoryID, ok := categoryOf[p.ModelID]
		if !ok {
			continue
		}
		path := "/categories/" + categoryID + "/" + p.ModelID + "/" + p.ID
		entries = s.appendPage(entries, path, lastModified(p.UpdatedAt, now), "monthly", 0.5)
	}

	return entries
}

// appendPage добавляет страницу на каждом языке, у каждой записи ссылки на все языки
func (s *SitemapService) appendPage(entries []models.SitemapEntry, page string, modified time.Time, freq string, priority float64) []models.SitemapEntry {
	alternates := make(map[models.Locale]string, len(models.SupportedLocales))
	for _, locale := range models.SupportedLocales {
		alternates[locale] = s.baseURL + "/" + locale.String() + page
	}

	for _, locale := range models.SupportedLocales {
		entries = append(entries, models.SitemapEntry{
			URL:          alternates[locale],
			LastModified: modified,
			ChangeFreq:   freq,
			Priority:     priority,
			Alternates:   alternates,
		})
	}
	return entries
}

func (s *SitemapService) logWarn(ctx context.Context, table string, err error) {
	s.logger.WarnWithContext(ctx, "Ошибка чтения таблицы для карты сайта",
		interfaces.LogField{Key: "table", Value: table},
		interfaces.LogField{Key: "error", Value: err.Error()})
}

func lastModified(updatedAt, fallback time.Time) time.Time {
	if updatedAt.IsZero() {
		return fallback
	}
	return updatedAt.UTC()
}
