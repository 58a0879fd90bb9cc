package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

// ContactSubmitter отправка сообщения из контактной формы
type ContactSubmitter interface {
	Submit(ctx context.Context, req models.ContactRequest) error
}

// ContactHandler обработчик контактной формы
type ContactHandler struct {
	contact ContactSubmitter
	logger  interfaces.LoggerPort
}

// NewContactHandler создает обработчик контактной формы
func NewContactHandler(contact ContactSubmitter, logger interfaces.LoggerPort) *ContactHandler {
	return &ContactHandler{contact: contact, logger: logger}
}

// Submit godoc
// @Summary      Контактная форма
// @Description  Письмо владельцу магазина и, если включено, подтверждение отправителю на его языке
// @Tags         contact
// @Accept       json
// @Produce      json
// @Param        request  body      models.ContactRequest  true  "Сообщение"
// @Success      200      {object}  successResponse
// @Failure      400      {object}  errorResponse
// @Failure      500      {object}  errorResponse
// @Router       /api/contact [post]
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", msgInvalidBody)
		return
	}
	if req.Locale == "" {
		req.Locale = models.ParseAcceptLanguage(r.Header.Get("Accept-Language")).String()
	}

	if err := h.contact.Submit(r.Context(), req); err != nil {
		writeServiceError(w, r, h.logger, err, msgSendFailed)
		return
	}

	writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}
