package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/services"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/go-chi/chi/v5"
)

// CatalogReader чтение дерева каталога
type CatalogReader interface {
	Resolved(ctx context.Context, locale models.Locale) ([]models.ResolvedCategory, error)
	Raw(ctx context.Context) ([]models.RawCategory, error)
	Category(ctx context.Context, locale models.Locale, categoryID string) (*models.ResolvedCategory, error)
	Model(ctx context.Context, locale models.Locale, categoryID, modelID string) (*models.ResolvedModel, error)
	Part(ctx context.Context, locale models.Locale, categoryID, modelID, partID string) (*models.ResolvedPart, error)
}

// AdminGateway изменения каталога под паролем администратора
type AdminGateway interface {
	Execute(ctx context.Context, cmd services.Command) error
}

// CatalogHandler обработчик чтения и изменения каталога
type CatalogHandler struct {
	catalog CatalogReader
	admin   AdminGateway
	logger  interfaces.LoggerPort
}

// NewCatalogHandler создает обработчик каталога
func NewCatalogHandler(catalog CatalogReader, admin AdminGateway, logger interfaces.LoggerPort) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		admin:   admin,
		logger:  logger,
	}
}

// commandRequest тело POST /api/catalog
type commandRequest struct {
	Action   string          `json:"action"`
	Password string          `json:"password"`
	Data     json.RawMessage `json:"data"`
}

// GetCatalog godoc
// @Summary      Дерево каталога
// @Description  Категории с моделями и запчастями. raw=true отдает все языковые варианты для редактирования.
// @Tags         catalog
// @Produce      json
// @Param        locale  query     string  false  "de, en или pl"  default(de)
// @Param        raw     query     bool    false  "Все языковые поля без подстановки"
// @Success      200     {object}  catalogResponse
// @Failure      500     {object}  errorResponse
// @Router       /api/catalog [get]
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if raw, _ := strconv.ParseBool(query.Get("raw")); raw {
		tree, err := h.catalog.Raw(r.Context())
		if err != nil {
			writeServiceError(w, r, h.logger, err, msgLoadFailed)
			return
		}
		writeJSON(w, r, http.StatusOK, catalogResponse{Categories: tree})
		return
	}

	tree, err := h.catalog.Resolved(r.Context(), models.ParseLocale(query.Get("locale")))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgLoadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, catalogResponse{Categories: tree})
}

// GetCategory godoc
// @Summary  Категория с моделями
// @Tags     catalog
// @Produce  json
// @Param    categoryID  path      string  true   "ID категории"
// @Param    locale      query     string  false  "de, en или pl"
// @Success  200         {object}  models.ResolvedCategory
// @Failure  404         {object}  errorResponse
// @Router   /api/catalog/categories/{categoryID} [get]
func (h *CatalogHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.Category(r.Context(), requestLocale(r), chi.URLParam(r, "categoryID"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgLoadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, category)
}

// GetModel godoc
// @Summary  Модель с запчастями
// @Tags     catalog
// @Produce  json
// @Param    categoryID  path      string  true   "ID категории"
// @Param    modelID     path      string  true   "ID модели"
// @Param    locale      query     string  false  "de, en или pl"
// @Success  200         {object}  models.ResolvedModel
// @Failure  404         {object}  errorResponse
// @Router   /api/catalog/categories/{categoryID}/{modelID} [get]
func (h *CatalogHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	model, err := h.catalog.Model(r.Context(), requestLocale(r),
		chi.URLParam(r, "categoryID"), chi.URLParam(r, "modelID"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgLoadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, model)
}

// GetPart godoc
// @Summary  Запчасть
// @Tags     catalog
// @Produce  json
// @Param    categoryID  path      string  true   "ID категории"
// @Param    modelID     path      string  true   "ID модели"
// @Param    partID      path      string  true   "ID запчасти"
// @Param    locale      query     string  false  "de, en или pl"
// @Success  200         {object}  models.ResolvedPart
// @Failure  404         {object}  errorResponse
// @Router   /api/catalog/categories/{categoryID}/{modelID}/{partID} [get]
func (h *CatalogHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.catalog.Part(r.Context(), requestLocale(r),
		chi.URLParam(r, "categoryID"), chi.URLParam(r, "modelID"), chi.URLParam(r, "partID"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgLoadFailed)
		return
	}
	writeJSON(w, r, http.StatusOK, part)
}

// PostCommand godoc
// @Summary      Изменение каталога
// @Description  action: test, create/update/delete Category, Model или Part. Пароль в теле или токен сессии в Authorization.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request  body      commandRequest  true  "Действие администратора"
// @Success      200      {object}  successResponse
// @Failure      400      {object}  errorResponse
// @Failure      401      {object}  errorResponse
// @Failure      404      {object}  errorResponse
// @Failure      409      {object}  errorResponse
// @Failure      500      {object}  errorResponse
// @Router       /api/catalog [post]
func (h *CatalogHandler) PostCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", msgInvalidBody)
		return
	}

	err := h.admin.Execute(r.Context(), services.Command{
		Action: models.AdminAction(req.Action),
		Credentials: services.Credentials{
			Password: req.Password,
			Token:    bearerToken(r),
		},
		Data: req.Data,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, msgSaveFailed)
		return
	}

	writeJSON(w, r, http.StatusOK, successResponse{Success: true})
}

// requestLocale язык из параметра locale, иначе из Accept-Language
func requestLocale(r *http.Request) models.Locale {
	if tag := r.URL.Query().Get("locale"); tag != "" {
		return models.ParseLocale(tag)
	}
	return models.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
