package handlers

import (
	"errors"
	"net/http"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/services"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/go-chi/render"
)

// Тексты ошибок, которые видит администратор и посетитель витрины
const (
	msgWrongPassword = "Falsches Passwort"
	msgSaveFailed    = "Fehler beim Speichern"
	msgLoadFailed    = "Fehler beim Laden"
	msgUploadFailed  = "Fehler beim Upload"
	msgNotFound      = "Nicht gefunden"
	msgConflict      = "Eintrag existiert bereits"
	msgUnknownAction = "Unbekannte Aktion"
	msgInvalidBody   = "Ungültige Anfrage"
	msgSendFailed    = "Fehler beim Senden der E-Mail"
	msgMailDisabled  = "E-Mail-Service nicht konfiguriert"
	msgSessionsOff   = "Sitzungen sind deaktiviert"
)

// errorResponse представляет структуру ответа с ошибкой
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// successResponse ответ успешной записи
type successResponse struct {
	Success bool `json:"success"`
}

// catalogResponse дерево каталога
type catalogResponse struct {
	Categories interface{} `json:"categories"`
}

// sessionResponse токен сессии администратора
type sessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// uploadResponse публичный адрес загруженного изображения
type uploadResponse struct {
	Path string `json:"path"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, errorResponse{Error: code, Code: status, Message: message})
}

// writeServiceError сопоставляет ошибку сервиса со статусом HTTP.
// failure - текст для внутренних ошибок, детали наружу не уходят.
func writeServiceError(w http.ResponseWriter, r *http.Request, log interfaces.LoggerPort, err error, failure string) {
	var verr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, r, http.StatusUnauthorized, "unauthorized", msgWrongPassword)
	case errors.As(err, &verr):
		writeError(w, r, http.StatusBadRequest, "validation", verr.Field+" "+verr.Reason)
	case errors.Is(err, services.ErrValidation):
		writeError(w, r, http.StatusBadRequest, "validation", msgInvalidBody)
	case errors.Is(err, services.ErrUnknownAction):
		writeError(w, r, http.StatusBadRequest, "unknown_action", msgUnknownAction)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", msgNotFound)
	case errors.Is(err, services.ErrConflict):
		writeError(w, r, http.StatusConflict, "conflict", msgConflict)
	case errors.Is(err, services.ErrSessionsDisabled):
		writeError(w, r, http.StatusNotFound, "sessions_disabled", msgSessionsOff)
	case errors.Is(err, services.ErrMailerUnavailable):
		writeError(w, r, http.StatusInternalServerError, "mailer_unavailable", msgMailDisabled)
	case errors.Is(err, services.ErrDelivery):
		log.ErrorWithContext(r.Context(), "Ошибка отправки письма", interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "delivery_failed", msgSendFailed)
	default:
		log.ErrorWithContext(r.Context(), "Ошибка обработки запроса",
			interfaces.LogField{Key: "path", Value: r.URL.Path},
			interfaces.LogField{Key: "error", Value: err.Error()},
		)
		writeError(w, r, http.StatusInternalServerError, "internal", failure)
	}
}
