package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/services"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

// AdminPanel вход администратора и загрузка изображений
type AdminPanel interface {
	Login(ctx context.Context, password string) (string, time.Time, error)
	Upload(ctx context.Context, creds services.Credentials, file services.UploadFile) (string, error)
}

// AdminHandler обработчик сессий и загрузки файлов.
// Размер тела загрузки ограничивает middleware.BodyLimit на маршруте.
type AdminHandler struct {
	admin  AdminPanel
	logger interfaces.LoggerPort
}

// NewAdminHandler создает обработчик
func NewAdminHandler(admin AdminPanel, logger interfaces.LoggerPort) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

type sessionRequest struct {
	Password string `json:"password"`
}

// CreateSession godoc
// @Summary      Вход администратора
// @Description  Обменивает пароль на подписанный токен сессии
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      sessionRequest  true  "Пароль администратора"
// @Success      200      {object}  sessionResponse
// @Failure      401      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Router       /api/admin/session [post]
func (h *AdminHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", msgInvalidBody)
		return
	}

	token, expiresAt, err := h.admin.Login(r.Context(), req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgLoadFailed)
		return
	}

	writeJSON(w, r, http.StatusOK, sessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// Upload godoc
// @Summary      Загрузка изображения запчасти
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        file      formData  file    true   "Изображение"
// @Param        password  formData  string  false  "Пароль администратора"
// @Success      200       {object}  uploadResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /api/upload [post]
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", msgInvalidBody)
		return
	}

	creds := services.Credentials{Token: bearerToken(r)}
	var spooled *spooledFile
	defer func() {
		if spooled != nil {
			spooled.remove()
		}
	}()

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.writeReadError(w, r, err)
			return
		}

		switch part.FormName() {
		case "password":
			value, err := io.ReadAll(io.LimitReader(part, maxPasswordField))
			if err != nil {
				h.writeReadError(w, r, err)
				return
			}
			creds.Password = string(value)
		case "file":
			if spooled != nil || part.FileName() == "" {
				continue
			}
			if creds.Password != "" || creds.Token != "" {
				// Учетные данные уже известны: сервис проверит их до чтения файла
				h.uploadStream(w, r, creds, part)
				return
			}
			// Файл пришел раньше пароля, его приходится дочитать до проверки
			spooled, err = spoolPart(part)
			if err != nil {
				h.writeReadError(w, r, err)
				return
			}
		}
	}

	upload := services.UploadFile{Size: -1}
	if spooled != nil {
		upload = spooled.uploadFile()
	}

	url, err := h.admin.Upload(r.Context(), creds, upload)
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgUploadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, uploadResponse{Path: url})
}

// uploadStream передает часть multipart в сервис без промежуточной записи на диск
func (h *AdminHandler) uploadStream(w http.ResponseWriter, r *http.Request, creds services.Credentials, part *multipart.Part) {
	body := &recordingReader{r: part}
	url, err := h.admin.Upload(r.Context(), creds, services.UploadFile{
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Size:        -1,
		Reader:      body,
	})
	if err != nil {
		if body.err != nil && !errors.Is(body.err, io.EOF) {
			h.writeReadError(w, r, body.err)
			return
		}
		writeServiceError(w, r, h.logger, err, msgUploadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, uploadResponse{Path: url})
}

func (h *AdminHandler) writeReadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, r, http.StatusRequestEntityTooLarge, "too_large", "Datei zu groß")
		return
	}
	writeError(w, r, http.StatusBadRequest, "bad_request", msgInvalidBody)
}

const maxPasswordField = 4 << 10

// recordingReader запоминает ошибку чтения тела запроса
type recordingReader struct {
	r   io.Reader
	err error
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.r.Read(p)
	if err != nil && rr.err == nil {
		rr.err = err
	}
	return n, err
}

// spooledFile файл из формы, сохраненный во временный файл
type spooledFile struct {
	file        *os.File
	filename    string
	contentType string
	size        int64
}

func spoolPart(part *multipart.Part) (*spooledFile, error) {
	f, err := os.CreateTemp("", "upload-*")
	if err != nil {
		return nil, err
	}
	sf := &spooledFile{
		file:        f,
		filename:    part.FileName(),
		contentType: part.Header.Get("Content-Type"),
	}
	if sf.size, err = io.Copy(f, part); err != nil {
		sf.remove()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		sf.remove()
		return nil, err
	}
	return sf, nil
}

func (sf *spooledFile) uploadFile() services.UploadFile {
	return services.UploadFile{
		Filename:    sf.filename,
		ContentType: sf.contentType,
		Size:        sf.size,
		Reader:      sf.file,
	}
}

func (sf *spooledFile) remove() {
	_ = sf.file.Close()
	_ = os.Remove(sf.file.Name())
}
