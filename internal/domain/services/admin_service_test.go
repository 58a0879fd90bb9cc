package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/logger"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/internal/security"
	"github.com/DominikSitny/tornado-racing-moto/pkg/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	svc      *AdminService
	catalog  *CatalogService
	store    *flakyStorage
	objects  *fakeObjectStore
	events   *fakePublisher
	cache    *countingInvalidator
	sessions *security.SessionManager
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	store := newFlakyStorage()
	seedCatalog(t, store)

	sessions, err := security.NewSessionManager("test-secret", time.Hour, "tornado")
	require.NoError(t, err)

	f := &adminFixture{
		store:    store,
		objects:  &fakeObjectStore{},
		events:   &fakePublisher{},
		cache:    &countingInvalidator{},
		sessions: sessions,
		catalog:  NewCatalogService(store, nil, 0, logger.NewNop()),
	}
	f.svc = NewAdminService(store, tx.NewNopTxManager(), f.objects, logger.NewNop(),
		WithSessions(sessions),
		WithCacheInvalidator(f.cache),
		WithChangePublisher(f.events),
	)
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func command(action models.AdminAction, password string, data interface{}) Command {
	raw, _ := json.Marshal(data)
	return Command{Action: action, Credentials: Credentials{Password: password}, Data: raw}
}

func TestExecuteRejectsWrongPasswordWithoutChanges(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	before := rowCount(t, f.store)

	actions := []struct {
		action models.AdminAction
		data   interface{}
	}{
		{models.ActionCreateCategory, models.CategoryInput{Name: "Street"}},
		{models.ActionUpdateCategory, models.CategoryInput{ID: "sport", Name: "X"}},
		{models.ActionDeleteCategory, models.EntityRef{ID: "sport"}},
		{models.ActionCreateModel, models.ModelInput{CategoryID: "sport", Brand: "BMW", Designation: "S1000RR"}},
		{models.ActionDeleteModel, models.EntityRef{ID: "honda-cbr"}},
		{models.ActionCreatePart, models.PartInput{ModelID: "honda-cbr", Name: "Kupplung"}},
		{models.ActionDeletePart, models.EntityRef{ID: "bremsen"}},
		{models.ActionTest, nil},
	}

	for _, a := range actions {
		for _, password := range []string{"falsch", "", testPassword + " "} {
			err := f.svc.Execute(ctx, command(a.action, password, a.data))
			assert.ErrorIs(t, err, ErrUnauthorized, "%s with %q", a.action, password)
		}
	}

	assert.Equal(t, before, rowCount(t, f.store))
	assert.Empty(t, f.events.events)
	assert.Zero(t, f.cache.calls)
}

func TestExecuteUnauthorizedWhenPasswordUnavailable(t *testing.T) {
	f := newAdminFixture(t)

	f.store.failSettings = true
	err := f.svc.Execute(context.Background(), command(models.ActionTest, testPassword, nil))
	assert.ErrorIs(t, err, ErrUnauthorized)

	empty := newFlakyStorage()
	svc := NewAdminService(empty, tx.NewNopTxManager(), &fakeObjectStore{}, logger.NewNop())
	err = svc.Execute(context.Background(), command(models.ActionTest, "anything", nil))
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExecuteTestAction(t *testing.T) {
	f := newAdminFixture(t)

	require.NoError(t, f.svc.Execute(context.Background(), command(models.ActionTest, testPassword, nil)))
	assert.Empty(t, f.events.events)
	assert.Zero(t, f.cache.calls)
}

func TestExecuteUnknownActionAfterAuth(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	err := f.svc.Execute(ctx, command("dropTables", "falsch", nil))
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = f.svc.Execute(ctx, command("dropTables", testPassword, nil))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestCreateCategoryThenTranslate(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Execute(ctx, command(models.ActionCreateCategory, testPassword,
		models.CategoryInput{ID: "street", Name: "Street"})))

	category, err := f.catalog.Category(ctx, models.LocaleEN, "street")
	require.NoError(t, err)
	assert.Equal(t, "Street", category.Name)

	require.NoError(t, f.svc.Execute(ctx, command(models.ActionUpdateCategory, testPassword,
		models.CategoryInput{ID: "street", Name: "Street", NameEN: "Street Bikes"})))

	category, err = f.catalog.Category(ctx, models.LocaleEN, "street")
	require.NoError(t, err)
	assert.Equal(t, "Street Bikes", category.Name)

	category, err = f.catalog.Category(ctx, models.LocalePL, "street")
	require.NoError(t, err)
	assert.Equal(t, "Street", category.Name)

	assert.Equal(t, 2, f.cache.calls)
	require.Len(t, f.events.events, 2)
	assert.Equal(t, models.ActionUpdateCategory, f.events.events[1].Action)
	assert.Equal(t, "street", f.events.events[1].EntityID)
}

func TestCreateGeneratesIDs(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Execute(ctx, command(models.ActionCreateCategory, testPassword,
		models.CategoryInput{Name: "Bremsen & Kupplung!"})))
	require.NoError(t, f.svc.Execute(ctx, command(models.ActionCreateModel, testPassword,
		models.ModelInput{CategoryID: "bremsen-kupplung", Brand: "Honda", Designation: "CBR 600RR"})))
	require.NoError(t, f.svc.Execute(ctx, command(models.ActionCreatePart, testPassword,
		models.PartInput{ModelID: "honda-cbr-600rr", Name: "Bremsbeläge vorne"})))

	_, err := f.catalog.Part(ctx, models.LocaleDE, "bremsen-kupplung", "honda-cbr-600rr", "bremsbel-ge-vorne")
	require.NoError(t, err)

	assert.Equal(t, "bremsen-kupplung", f.events.events[0].EntityID)
	assert.Equal(t, models.EntityPart, f.events.events[2].EntityType)
}

func TestCreateRejectsDuplicateID(t *testing.T) {
	f := newAdminFixture(t)
	before := rowCount(t, f.store)

	err := f.svc.Execute(context.Background(), command(models.ActionCreateCategory, testPassword,
		models.CategoryInput{Name: "Sport"}))
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, before, rowCount(t, f.store))
	assert.Zero(t, f.cache.calls)
}

func TestExecuteValidation(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	before := rowCount(t, f.store)

	tests := []struct {
		name   string
		action models.AdminAction
		data   interface{}
		field  string
	}{
		{"category without name", models.ActionCreateCategory, models.CategoryInput{Name: "  "}, "name"},
		{"category with bad id", models.ActionCreateCategory, models.CategoryInput{ID: "Sport Bikes", Name: "Sport Bikes"}, "id"},
		{"category name without slug chars", models.ActionCreateCategory, models.CategoryInput{Name: "!!!"}, "id"},
		{"update without id", models.ActionUpdateCategory, models.CategoryInput{Name: "Sport"}, "id"},
		{"model without category", models.ActionCreateModel, models.ModelInput{Brand: "BMW", Designation: "R"}, "category_id"},
		{"model without brand", models.ActionCreateModel, models.ModelInput{CategoryID: "sport", Designation: "R"}, "brand"},
		{"model without designation", models.ActionCreateModel, models.ModelInput{CategoryID: "sport", Brand: "BMW"}, "designation"},
		{"part without model", models.ActionCreatePart, models.PartInput{Name: "Kette"}, "model_id"},
		{"part without name", models.ActionCreatePart, models.PartInput{ModelID: "honda-cbr"}, "name"},
		{"delete without id", models.ActionDeletePart, models.EntityRef{}, "id"},
		{"missing data", models.ActionDeleteModel, nil, "data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.svc.Execute(ctx, command(tt.action, testPassword, tt.data))
			require.ErrorIs(t, err, ErrValidation)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	err := f.svc.Execute(ctx, Command{
		Action:      models.ActionCreatePart,
		Credentials: Credentials{Password: testPassword},
		Data:        json.RawMessage(`{"name": 42}`),
	})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, before, rowCount(t, f.store))
}

func TestUpdateAndDeleteMissingRows(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	err := f.svc.Execute(ctx, command(models.ActionUpdatePart, testPassword, models.PartInput{ID: "nope", Name: "X"}))
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.Execute(ctx, command(models.ActionDeleteCategory, testPassword, models.EntityRef{ID: "nope"}))
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.Execute(ctx, command(models.ActionCreateModel, testPassword,
		models.ModelInput{CategoryID: "nope", Brand: "BMW", Designation: "R"}))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateOverwritesAllFields(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Execute(ctx, command(models.ActionUpdatePart, testPassword,
		models.PartInput{ID: "bremsen", Name: "Bremsanlage", Image: "https://cdn.example.com/parts/1.jpg"})))

	raw, err := f.catalog.Raw(ctx)
	require.NoError(t, err)
	var part models.RawPart
	for _, p := range raw[1].Models[0].Parts {
		if p.ID == "bremsen" {
			part = p
		}
	}
	assert.Equal(t, "Bremsanlage", part.Name)
	// name_en не передан и потому стерт
	assert.Equal(t, "", part.NameEN)
	assert.Equal(t, "honda-cbr", part.ModelID)
	assert.Equal(t, "https://cdn.example.com/parts/1.jpg", part.Image)
}

func TestDeleteCategoryCascades(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Execute(ctx, command(models.ActionDeleteCategory, testPassword, models.EntityRef{ID: "sport"})))

	ms, err := f.store.MemoryStorage.ListModels(ctx)
	require.NoError(t, err)
	for _, m := range ms {
		assert.NotEqual(t, "sport", m.CategoryID)
	}
	assert.Len(t, ms, 1)

	ps, err := f.store.MemoryStorage.ListParts(ctx)
	require.NoError(t, err)
	assert.Empty(t, ps)

	cats, err := f.store.MemoryStorage.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "enduro", cats[0].ID)
}

func TestDeleteModelCascades(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Execute(ctx, command(models.ActionDeleteModel, testPassword, models.EntityRef{ID: "honda-cbr"})))

	ps, err := f.store.MemoryStorage.ListParts(ctx)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "kette", ps[0].ID)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newAdminFixture(t)
	f.events.err = errors.New("kafka down")

	err := f.svc.Execute(context.Background(), command(models.ActionDeletePart, testPassword, models.EntityRef{ID: "kette"}))
	require.NoError(t, err)
	assert.Len(t, f.events.events, 1)
}

func TestSessionLogin(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Login(ctx, "falsch")
	assert.ErrorIs(t, err, ErrUnauthorized)

	token, expiresAt, err := f.svc.Login(ctx, testPassword)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	cmd := command(models.ActionDeletePart, "", models.EntityRef{ID: "kette"})
	cmd.Token = token
	require.NoError(t, f.svc.Execute(ctx, cmd))

	cmd.Token = "garbage"
	assert.ErrorIs(t, f.svc.Execute(ctx, cmd), ErrUnauthorized)

	// Неверный токен, но верный пароль
	cmd = command(models.ActionTest, testPassword, nil)
	cmd.Token = "garbage"
	assert.NoError(t, f.svc.Execute(ctx, cmd))
}

func TestLoginWithoutSessions(t *testing.T) {
	store := newFlakyStorage()
	seedCatalog(t, store)
	svc := NewAdminService(store, tx.NewNopTxManager(), &fakeObjectStore{}, logger.NewNop())

	_, _, err := svc.Login(context.Background(), testPassword)
	assert.ErrorIs(t, err, ErrSessionsDisabled)
}

func TestBcryptStoredPassword(t *testing.T) {
	f := newAdminFixture(t)
	hash, err := security.HashPassword("neues-passwort")
	require.NoError(t, err)
	require.NoError(t, f.store.SetSetting(context.Background(), storage.SettingAdminPassword, hash))

	assert.NoError(t, f.svc.Execute(context.Background(), command(models.ActionTest, "neues-passwort", nil)))
	assert.ErrorIs(t, f.svc.Execute(context.Background(), command(models.ActionTest, hash, nil)), ErrUnauthorized)
}

func TestStorageKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "1700000000123-my-photo--1-.jpg", StorageKey(now, "my photo (1).jpg"))
	assert.Equal(t, "1700000000123-..-..-etc-passwd", StorageKey(now, "../../etc/passwd"))
	assert.Equal(t, "1700000000123-Bremse-v2.PNG", StorageKey(now, "Bremse_v2.PNG"))
}

func TestUpload(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	before := rowCount(t, f.store)

	url, err := f.svc.Upload(ctx, Credentials{Password: testPassword}, UploadFile{
		Filename:    "brake disc.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Reader:      strings.NewReader("jpeg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/parts/1700000000000-brake-disc.jpg", url)

	require.Len(t, f.objects.objects, 1)
	assert.Equal(t, "jpeg", string(f.objects.objects[0].data))
	assert.Equal(t, "image/jpeg", f.objects.objects[0].contentType)

	// Запчасти не меняются
	assert.Equal(t, before, rowCount(t, f.store))
	assert.Empty(t, f.events.events)
}

func TestUploadErrors(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, Credentials{Password: "falsch"}, UploadFile{Filename: "a.jpg", Reader: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.svc.Upload(ctx, Credentials{Password: testPassword}, UploadFile{})
	assert.ErrorIs(t, err, ErrValidation)

	f.objects.err = errors.New("bucket gone")
	_, err = f.svc.Upload(ctx, Credentials{Password: testPassword}, UploadFile{Filename: "a.jpg", Reader: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Empty(t, f.objects.objects)
}
