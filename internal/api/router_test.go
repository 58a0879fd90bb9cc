package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/logger"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/mailer"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/objectstore"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/services"
	"github.com/DominikSitny/tornado-racing-moto/internal/security"
	"github.com/DominikSitny/tornado-racing-moto/pkg/tx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "geheim"

type recordingSender struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return nil
}

type testServer struct {
	handler http.Handler
	store   *storage.MemoryStorage
	sender  *recordingSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logger.NewNop()

	store := storage.NewMemoryStorage()
	require.NoError(t, store.SetSetting(ctx, storage.SettingAdminPassword, adminPassword))
	require.NoError(t, store.CreateCategory(ctx, &models.CategoryRecord{
		ID:   "sport",
		Name: models.LocalizedText{DE: "Sport", EN: "Sport bikes"},
	}))
	require.NoError(t, store.CreateModel(ctx, &models.ModelRecord{ID: "honda-cbr", CategoryID: "sport", Brand: "Honda", Designation: "CBR"}))
	require.NoError(t, store.CreatePart(ctx, &models.PartRecord{ID: "bremsen", ModelID: "honda-cbr", Name: models.LocalizedText{DE: "Bremsen", EN: "Brakes"}}))

	uploads := t.TempDir()
	objects, err := objectstore.NewLocalStore(uploads, "/uploads")
	require.NoError(t, err)

	sessions, err := security.NewSessionManager("test-secret", time.Hour, "test")
	require.NoError(t, err)

	renderer, err := mailer.NewRenderer("tornadoracingmoto.de")
	require.NoError(t, err)
	sender := &recordingSender{}

	catalog := services.NewCatalogService(store, nil, 0, log)
	admin := services.NewAdminService(store, tx.NewNopTxManager(), objects, log,
		services.WithSessions(sessions),
		services.WithCacheInvalidator(catalog),
	)
	contact := services.NewContactService(sender, renderer, services.ContactConfig{
		From:             "Tornado Racing Moto <noreply@tornadoracingmoto.de>",
		ContactEmail:     "info@tornadoprod.de",
		SendConfirmation: true,
	}, log)
	sitemap := services.NewSitemapService(store, "https://tornadoracingmoto.de", log)

	router := SetupRouter(RouterConfig{
		Catalog:          catalog,
		Admin:            admin,
		Contact:          contact,
		Sitemap:          sitemap,
		Store:            store,
		Logger:           log,
		CORSAllowOrigins: []string{"*"},
		RequestTimeout:   5 * time.Second,
		BodyLimit:        1 << 10,
		MaxUpload:        1 << 20,
		MetricsEndpoint:  "/metrics",
		UploadsDir:       uploads,
	})

	return &testServer{handler: router, store: store, sender: sender}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = srv.do(t, http.MethodHead, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestGetCatalog(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/catalog?locale=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resolved struct {
		Categories []models.ResolvedCategory `json:"categories"`
	}
	decode(t, rec, &resolved)
	require.Len(t, resolved.Categories, 1)
	assert.Equal(t, "Sport bikes", resolved.Categories[0].Name)
	assert.Equal(t, "Brakes", resolved.Categories[0].Models[0].Parts[0].Name)

	// Без locale - немецкий
	rec = srv.do(t, http.MethodGet, "/api/catalog", nil)
	decode(t, rec, &resolved)
	assert.Equal(t, "Sport", resolved.Categories[0].Name)

	rec = srv.do(t, http.MethodGet, "/api/catalog?raw=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw struct {
		Categories []models.RawCategory `json:"categories"`
	}
	decode(t, rec, &raw)
	assert.Equal(t, "Sport", raw.Categories[0].Name)
	assert.Equal(t, "Sport bikes", raw.Categories[0].NameEN)
	assert.Equal(t, "", raw.Categories[0].NamePL)
}

func TestGetSingleEntities(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/catalog/categories/sport/honda-cbr/bremsen?locale=en", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var part models.ResolvedPart
	decode(t, rec, &part)
	assert.Equal(t, "Brakes", part.Name)

	rec = srv.do(t, http.MethodGet, "/api/catalog/categories/sport/honda-cbr", nil, "Accept-Language", "en-US,en;q=0.9")
	require.Equal(t, http.StatusOK, rec.Code)
	var model models.ResolvedModel
	decode(t, rec, &model)
	assert.Equal(t, "Brakes", model.Parts[0].Name)

	rec = srv.do(t, http.MethodGet, "/api/catalog/categories/street", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not_found","code":404,"message":"Nicht gefunden"}`, rec.Body.String())
}

func TestPostCommandAuthorization(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"action":   "createCategory",
		"password": "falsch",
		"data":     map[string]string{"name": "Enduro"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized","code":401,"message":"Falsches Passwort"}`, rec.Body.String())

	cats, err := srv.store.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]string{"action": "test", "password": adminPassword})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]string{"action": "dropTables", "password": adminPassword})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]string{"action": "dropTables", "password": "falsch"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostCommandMutations(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"action":   "createCategory",
		"password": adminPassword,
		"data":     map[string]string{"name": "Enduro & Cross", "name_pl": "Enduro i cross"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/catalog?locale=pl", nil)
	var tree struct {
		Categories []models.ResolvedCategory `json:"categories"`
	}
	decode(t, rec, &tree)
	require.Len(t, tree.Categories, 2)
	assert.Equal(t, "enduro-cross", tree.Categories[0].ID)
	assert.Equal(t, "Enduro i cross", tree.Categories[0].Name)

	// Повторное создание с тем же id
	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"action":   "createCategory",
		"password": adminPassword,
		"data":     map[string]string{"name": "Enduro & Cross"},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"action":   "createModel",
		"password": adminPassword,
		"data":     map[string]string{"category_id": "sport"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"action":   "deletePart",
		"password": adminPassword,
		"data":     map[string]string{"id": "nope"},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]interface{}{
		"action":   "deleteCategory",
		"password": adminPassword,
		"data":     map[string]string{"id": "sport"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	parts, err := srv.store.ListParts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestPostCommandRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/catalog", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := strings.Repeat("x", 2<<10)
	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]string{"action": "test", "password": big})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSessionLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/admin/session", map[string]string{"password": "falsch"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/admin/session", map[string]string{"password": adminPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		Token     string `json:"token"`
		ExpiresAt string `json:"expires_at"`
	}
	decode(t, rec, &session)
	require.NotEmpty(t, session.Token)
	_, err := time.Parse(time.RFC3339, session.ExpiresAt)
	require.NoError(t, err)

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]string{"action": "test"},
		"Authorization", "Bearer "+session.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/catalog", map[string]string{"action": "test"},
		"Authorization", "Bearer "+session.Token+"x")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func multipartUpload(t *testing.T, password, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if password != "" {
		require.NoError(t, mw.WriteField("password", password))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	srv := newTestServer(t)
	image := []byte("\x89PNG fake image")

	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, multipartUpload(t, adminPassword, "my photo (1).png", image))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Path string `json:"path"`
	}
	decode(t, rec, &resp)
	require.True(t, strings.HasPrefix(resp.Path, "/uploads/"), resp.Path)
	assert.True(t, strings.HasSuffix(resp.Path, "-my-photo--1-.png"), resp.Path)

	rec = srv.do(t, http.MethodGet, resp.Path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, image, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, multipartUpload(t, "falsch", "a.png", image))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, multipartUpload(t, adminPassword, "", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContact(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/contact", models.ContactRequest{
		Name:    "Max",
		Email:   "max@example.com",
		Message: "Habt ihr Bremsen für die CBR?",
	}, "Accept-Language", "en-GB")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, srv.sender.sent, 2)
	assert.Equal(t, []string{"max@example.com"}, srv.sender.sent[1].To)

	rec = srv.do(t, http.MethodPost, "/api/contact", models.ContactRequest{Name: "Max", Email: "kaputt", Message: "Hallo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, srv.sender.sent, 2)
}

func TestSitemap(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/sitemap.xml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, `xmlns:xhtml="http://www.w3.org/1999/xhtml"`)
	assert.Contains(t, body, "<loc>https://tornadoracingmoto.de/pl/categories/sport/honda-cbr/bremsen</loc>")
	assert.Contains(t, body, `<xhtml:link rel="alternate" hreflang="en" href="https://tornadoracingmoto.de/en/categories/sport"></xhtml:link>`)
	assert.Contains(t, body, "<priority>1.0</priority>")
}
