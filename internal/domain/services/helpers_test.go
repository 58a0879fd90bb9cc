package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/mailer"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/stretchr/testify/require"
)

const testPassword = "geheim"

var errStoreDown = errors.New("connection refused")

// flakyStorage хранилище в памяти с управляемыми ошибками чтения
type flakyStorage struct {
	*storage.MemoryStorage
	failCategories bool
	failModels     bool
	failParts      bool
	failSettings   bool
	reads          int
	// beforeListParts вызывается внутри ListParts, до чтения строк
	beforeListParts func(ctx context.Context)
	// extraParts строки, которых нет в памяти: например, сироты без модели
	extraParts []*models.PartRecord
}

func newFlakyStorage() *flakyStorage {
	return &flakyStorage{MemoryStorage: storage.NewMemoryStorage()}
}

func (f *flakyStorage) ListCategories(ctx context.Context) ([]*models.CategoryRecord, error) {
	f.reads++
	if f.failCategories {
		return nil, errStoreDown
	}
	return f.MemoryStorage.ListCategories(ctx)
}

func (f *flakyStorage) ListModels(ctx context.Context) ([]*models.ModelRecord, error) {
	if f.failModels {
		return nil, errStoreDown
	}
	return f.MemoryStorage.ListModels(ctx)
}

func (f *flakyStorage) ListParts(ctx context.Context) ([]*models.PartRecord, error) {
	if f.beforeListParts != nil {
		f.beforeListParts(ctx)
	}
	if f.failParts {
		return nil, errStoreDown
	}
	parts, err := f.MemoryStorage.ListParts(ctx)
	return append(parts, f.extraParts...), err
}

func (f *flakyStorage) GetSetting(ctx context.Context, key string) (string, error) {
	if f.failSettings {
		return "", errStoreDown
	}
	return f.MemoryStorage.GetSetting(ctx, key)
}

// seedCatalog создает две категории, три модели и три запчасти
func seedCatalog(t *testing.T, s *flakyStorage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.SetSetting(ctx, storage.SettingAdminPassword, testPassword))

	require.NoError(t, s.CreateCategory(ctx, &models.CategoryRecord{
		ID:          "sport",
		Name:        models.LocalizedText{DE: "Sport", EN: "Sport bikes"},
		Description: models.LocalizedText{DE: "Sportmotorräder", PL: "Motocykle sportowe"},
	}))
	require.NoError(t, s.CreateCategory(ctx, &models.CategoryRecord{
		ID:   "enduro",
		Name: models.LocalizedText{DE: "Enduro"},
	}))

	require.NoError(t, s.CreateModel(ctx, &models.ModelRecord{ID: "yamaha-r1", CategoryID: "sport", Brand: "Yamaha", Designation: "R1"}))
	require.NoError(t, s.CreateModel(ctx, &models.ModelRecord{ID: "honda-cbr", CategoryID: "sport", Brand: "Honda", Designation: "CBR"}))
	require.NoError(t, s.CreateModel(ctx, &models.ModelRecord{ID: "ktm-exc", CategoryID: "enduro", Brand: "KTM", Designation: "EXC"}))

	require.NoError(t, s.CreatePart(ctx, &models.PartRecord{ID: "bremsen", ModelID: "honda-cbr", Name: models.LocalizedText{DE: "Bremsen", EN: "Brakes"}}))
	require.NoError(t, s.CreatePart(ctx, &models.PartRecord{ID: "auspuff", ModelID: "honda-cbr", Name: models.LocalizedText{DE: "Auspuff"}}))
	require.NoError(t, s.CreatePart(ctx, &models.PartRecord{ID: "kette", ModelID: "yamaha-r1", Name: models.LocalizedText{DE: "Kette", PL: "Łańcuch"}}))
}

// rowCount число строк во всех таблицах каталога
func rowCount(t *testing.T, s *flakyStorage) int {
	t.Helper()
	ctx := context.Background()

	cats, err := s.MemoryStorage.ListCategories(ctx)
	require.NoError(t, err)
	ms, err := s.MemoryStorage.ListModels(ctx)
	require.NoError(t, err)
	ps, err := s.MemoryStorage.ListParts(ctx)
	require.NoError(t, err)
	return len(cats) + len(ms) + len(ps)
}

type storedObject struct {
	key         string
	data        []byte
	contentType string
}

type fakeObjectStore struct {
	mu      sync.Mutex
	objects []storedObject
	err     error
}

func (f *fakeObjectStore) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects = append(f.objects, storedObject{key: key, data: data, contentType: contentType})
	return nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://cdn.example.com/parts/" + key
}

type fakeSender struct {
	sent []mailer.Message
	// failTo адрес, отправка на который завершается ошибкой
	failTo string
}

func (f *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	for _, to := range msg.To {
		if to == f.failTo {
			return errors.New("resend: 422 invalid recipient")
		}
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakePublisher struct {
	events []models.CatalogChangedEvent
	err    error
}

func (f *fakePublisher) PublishCatalogChanged(_ context.Context, event models.CatalogChangedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.calls++
}
