package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/logger"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	panelPassword = "geheim"
	panelToken    = "session-token"
)

// stubPanel проверяет учетные данные до чтения файла, как AdminService
type stubPanel struct {
	calls    int
	received []byte
	size     int64
	filename string
}

func (p *stubPanel) Login(context.Context, string) (string, time.Time, error) {
	return "", time.Time{}, services.ErrSessionsDisabled
}

func (p *stubPanel) Upload(_ context.Context, creds services.Credentials, file services.UploadFile) (string, error) {
	p.calls++
	if creds.Password != panelPassword && creds.Token != panelToken {
		return "", services.ErrUnauthorized
	}
	if file.Reader == nil {
		return "", &services.ValidationError{Field: "file", Reason: "is required"}
	}
	data, err := io.ReadAll(file.Reader)
	if err != nil {
		return "", err
	}
	p.received = data
	p.size = file.Size
	p.filename = file.Filename
	return "/uploads/" + file.Filename, nil
}

// countingBody считает байты, прочитанные из тела запроса
type countingBody struct {
	r io.Reader
	n int
}

func (c *countingBody) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

type formField struct {
	name, filename string
	content        []byte
}

func uploadBody(t *testing.T, fields ...formField) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if f.filename == "" {
			require.NoError(t, mw.WriteField(f.name, string(f.content)))
			continue
		}
		fw, err := mw.CreateFormFile(f.name, f.filename)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func serveUpload(h *AdminHandler, body io.Reader, contentType string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	return rec
}

func TestUploadRejectsWrongPasswordBeforeReadingFile(t *testing.T) {
	panel := &stubPanel{}
	h := NewAdminHandler(panel, logger.NewNop())
	image := bytes.Repeat([]byte{0xAB}, 512<<10)

	buf, contentType := uploadBody(t,
		formField{name: "password", content: []byte("falsch")},
		formField{name: "file", filename: "big.png", content: image},
	)
	total := buf.Len()
	body := &countingBody{r: buf}

	rec := serveUpload(h, body, contentType)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, panel.received)
	// Прочитан только пароль и начало части с файлом
	assert.Less(t, body.n, total/8)
}

func TestUploadStreamsAfterPassword(t *testing.T) {
	panel := &stubPanel{}
	h := NewAdminHandler(panel, logger.NewNop())
	image := []byte("\x89PNG fake image")

	buf, contentType := uploadBody(t,
		formField{name: "password", content: []byte(panelPassword)},
		formField{name: "file", filename: "a.png", content: image},
	)
	rec := serveUpload(h, buf, contentType)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"/uploads/a.png"}`, rec.Body.String())
	assert.Equal(t, image, panel.received)
	assert.Equal(t, int64(-1), panel.size)
}

func TestUploadFileBeforePassword(t *testing.T) {
	image := []byte("\x89PNG fake image")

	t.Run("accepted", func(t *testing.T) {
		panel := &stubPanel{}
		h := NewAdminHandler(panel, logger.NewNop())
		buf, contentType := uploadBody(t,
			formField{name: "file", filename: "a.png", content: image},
			formField{name: "password", content: []byte(panelPassword)},
		)
		rec := serveUpload(h, buf, contentType)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, image, panel.received)
		assert.Equal(t, int64(len(image)), panel.size)
		assert.Equal(t, "a.png", panel.filename)
	})

	t.Run("wrong password", func(t *testing.T) {
		panel := &stubPanel{}
		h := NewAdminHandler(panel, logger.NewNop())
		buf, contentType := uploadBody(t,
			formField{name: "file", filename: "a.png", content: image},
			formField{name: "password", content: []byte("falsch")},
		)
		rec := serveUpload(h, buf, contentType)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, panel.received)
	})
}

func TestUploadWithBearerToken(t *testing.T) {
	panel := &stubPanel{}
	h := NewAdminHandler(panel, logger.NewNop())
	image := []byte("\x89PNG fake image")

	buf, contentType := uploadBody(t, formField{name: "file", filename: "a.png", content: image})
	rec := serveUpload(h, buf, contentType, "Authorization", "Bearer "+panelToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, image, panel.received)
}

func TestUploadBadRequests(t *testing.T) {
	panel := &stubPanel{}
	h := NewAdminHandler(panel, logger.NewNop())

	rec := serveUpload(h, bytes.NewBufferString(`{"file":"a.png"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, panel.calls)

	// Без файла ответ дает сервис: сначала авторизация, потом проверка поля
	buf, contentType := uploadBody(t, formField{name: "password", content: []byte(panelPassword)})
	rec = serveUpload(h, buf, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	buf, contentType = uploadBody(t)
	rec = serveUpload(h, buf, contentType)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	panel := &stubPanel{}
	h := NewAdminHandler(panel, logger.NewNop())
	image := bytes.Repeat([]byte{0xCD}, 64<<10)

	for name, fields := range map[string][]formField{
		"streamed": {{name: "password", content: []byte(panelPassword)}, {name: "file", filename: "a.png", content: image}},
		"spooled":  {{name: "file", filename: "a.png", content: image}, {name: "password", content: []byte(panelPassword)}},
	} {
		t.Run(name, func(t *testing.T) {
			buf, contentType := uploadBody(t, fields...)
			req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
			rec := httptest.NewRecorder()
			req.Body = http.MaxBytesReader(rec, io.NopCloser(buf), 16<<10)
			req.Header.Set("Content-Type", contentType)

			h.Upload(rec, req)
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		})
	}
}
