package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/messaging"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/objectstore"
	"github.com/DominikSitny/tornado-racing-moto/internal/adapters/storage"
	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/internal/security"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/DominikSitny/tornado-racing-moto/pkg/tx"
)

// Credentials данные, которыми администратор подтверждает запрос.
// Достаточно одного из полей: сессионного токена или пароля.
type Credentials struct {
	Password string
	Token    string
}

// Command запрос к шлюзу администрирования
type Command struct {
	Action models.AdminAction
	Credentials
	Data json.RawMessage
}

// UploadFile загружаемое изображение
type UploadFile struct {
	Filename    string
	ContentType string
	// Size -1, если размер неизвестен
	Size   int64
	Reader io.Reader
}

// CacheInvalidator сбрасывает закэшированный каталог после изменения
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// ChangePublisher публикует событие об изменении каталога
type ChangePublisher interface {
	PublishCatalogChanged(ctx context.Context, event models.CatalogChangedEvent) error
}

// AdminService шлюз CRUD-операций каталога под паролем администратора
type AdminService struct {
	repository storage.Repository
	txManager  tx.TxManager
	objects    objectstore.ObjectStore
	sessions   interfaces.TokenPort
	catalog    CacheInvalidator
	events     ChangePublisher
	logger     interfaces.LoggerPort
	now        func() time.Time
}

// AdminOption необязательная зависимость AdminService
type AdminOption func(*AdminService)

// WithSessions включает вход по сессионному токену
func WithSessions(sessions interfaces.TokenPort) AdminOption {
	return func(s *AdminService) { s.sessions = sessions }
}

// WithCacheInvalidator сбрасывает кэш каталога после каждой успешной операции
func WithCacheInvalidator(catalog CacheInvalidator) AdminOption {
	return func(s *AdminService) { s.catalog = catalog }
}

// WithChangePublisher публикует события изменений каталога
func WithChangePublisher(events ChangePublisher) AdminOption {
	return func(s *AdminService) { s.events = events }
}

// NewAdminService создает шлюз администрирования
func NewAdminService(
	repository storage.Repository,
	txManager tx.TxManager,
	objects objectstore.ObjectStore,
	logger interfaces.LoggerPort,
	opts ...AdminOption,
) *AdminService {
	s := &AdminService{
		repository: repository,
		txManager:  txManager,
		objects:    objects,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorize проверяет токен сессии или пароль. Таблицы каталога не затрагиваются.
func (s *AdminService) Authorize(ctx context.Context, creds Credentials) error {
	if creds.Token != "" && s.sessions != nil {
		if err := s.sessions.Validate(creds.Token); err == nil {
			return nil
		}
		if creds.Password == "" {
			return ErrUnauthorized
		}
	}

	if creds.Password == "" {
		return ErrUnauthorized
	}

	stored, err := s.repository.GetSetting(ctx, storage.SettingAdminPassword)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.ErrorWithContext(ctx, "Ошибка чтения пароля администратора",
				interfaces.LogField{Key: "error", Value: err.Error()})
		} else {
			s.logger.WarnWithContext(ctx, "Пароль администратора не задан в settings")
		}
		return ErrUnauthorized
	}

	if !security.PasswordMatches(stored, creds.Password) {
		return ErrUnauthorized
	}
	return nil
}

// Login проверяет пароль и выпускает сессионный токен
func (s *AdminService) Login(ctx context.Context, password string) (string, time.Time, error) {
	if s.sessions == nil {
		return "", time.Time{}, ErrSessionsDisabled
	}
	if err := s.Authorize(ctx, Credentials{Password: password}); err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := s.sessions.Issue(security.AdminSubject)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue session: %w", err)
	}
	return token, expiresAt, nil
}

// Execute выполняет действие администратора
func (s *AdminService) Execute(ctx context.Context, cmd Command) error {
	if err := s.Authorize(ctx, cmd.Credentials); err != nil {
		return err
	}

	if cmd.Action == models.ActionTest {
		return nil
	}
	if !cmd.Action.IsMutation() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	entity, id, err := s.dispatch(ctx, cmd)
	catalogMutations.WithLabelValues(string(cmd.Action), mutationStatus(err)).Inc()
	if err != nil {
		if !errors.Is(err, ErrValidation) && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrConflict) {
			s.logger.ErrorWithContext(ctx, "Ошибка сохранения каталога",
				interfaces.LogField{Key: "action", Value: string(cmd.Action)},
				interfaces.LogField{Key: "id", Value: id},
				interfaces.LogField{Key: "error", Value: err.Error()})
		}
		return err
	}

	s.logger.InfoWithContext(ctx, "Каталог изменен",
		interfaces.LogField{Key: "action", Value: string(cmd.Action)},
		interfaces.LogField{Key: "entity", Value: string(entity)},
		interfaces.LogField{Key: "id", Value: id})

	s.afterMutation(ctx, cmd.Action, entity, id)
	return nil
}

func (s *AdminService) dispatch(ctx context.Context, cmd Command) (models.EntityType, string, error) {
	switch cmd.Action {
	case models.ActionCreateCategory, models.ActionUpdateCategory:
		var in models.CategoryInput
		if err := decodeData(cmd.Data, &in); err != nil {
			return models.EntityCategory, "", err
		}
		if cmd.Action == models.ActionCreateCategory {
			id, err := s.createCategory(ctx, in)
			return models.EntityCategory, id, err
		}
		return models.EntityCategory, in.ID, s.updateCategory(ctx, in)

	case models.ActionCreateModel, models.ActionUpdateModel:
		var in models.ModelInput
		if err := decodeData(cmd.Data, &in); err != nil {
			return models.EntityModel, "", err
		}
		if cmd.Action == models.ActionCreateModel {
			id, err := s.createModel(ctx, in)
			return models.EntityModel, id, err
		}
		return models.EntityModel, in.ID, s.updateModel(ctx, in)

	case models.ActionCreatePart, models.ActionUpdatePart:
		var in models.PartInput
		if err := decodeData(cmd.Data, &in); err != nil {
			return models.EntityPart, "", err
		}
		if cmd.Action == models.ActionCreatePart {
			id, err := s.createPart(ctx, in)
			return models.EntityPart, id, err
		}
		return models.EntityPart, in.ID, s.updatePart(ctx, in)

	case models.ActionDeleteCategory:
		var ref models.EntityRef
		if err := decodeData(cmd.Data, &ref); err != nil {
			return models.EntityCategory, "", err
		}
		return models.EntityCategory, ref.ID, s.deleteCategory(ctx, ref.ID)

	case models.ActionDeleteModel:
		var ref models.EntityRef
		if err := decodeData(cmd.Data, &ref); err != nil {
			return models.EntityModel, "", err
		}
		return models.EntityModel, ref.ID, s.deleteModel(ctx, ref.ID)

	case models.ActionDeletePart:
		var ref models.EntityRef
		if err := decodeData(cmd.Data, &ref); err != nil {
			return models.EntityPart, "", err
		}
		return models.EntityPart, ref.ID, s.deletePart(ctx, ref.ID)
	}

	return "", "", fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
}

// ---------------------------- КАТЕГОРИИ ----------------------------

func (s *AdminService) createCategory(ctx context.Context, in models.CategoryInput) (string, error) {
	if isBlank(in.Name) {
		return in.ID, required("name")
	}
	id, err := resolveID(in.ID, models.GenerateID(in.Name))
	if err != nil {
		return in.ID, err
	}

	record := in.Record()
	record.ID = id
	return id, mapStoreError(s.repository.CreateCategory(ctx, record))
}

func (s *AdminService) updateCategory(ctx context.Context, in models.CategoryInput) error {
	if err := requireID(in.ID); err != nil {
		return err
	}
	if isBlank(in.Name) {
		return required("name")
	}
	return mapStoreError(s.repository.UpdateCategory(ctx, in.Record()))
}

// deleteCategory удаляет запчасти, модели и саму категорию в одной транзакции
func (s *AdminService) deleteCategory(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		parts, err := s.repository.DeletePartsByCategory(ctx, id)
		if err != nil {
			return err
		}
		modelCount, err := s.repository.DeleteModelsByCategory(ctx, id)
		if err != nil {
			return err
		}
		if err := s.repository.DeleteCategory(ctx, id); err != nil {
			return err
		}

		s.logger.DebugWithContext(ctx, "Каскадное удаление категории",
			interfaces.LogField{Key: "id", Value: id},
			interfaces.LogField{Key: "models", Value: modelCount},
			interfaces.LogField{Key: "parts", Value: parts})
		return nil
	})
	return mapStoreError(err)
}

// ---------------------------- МОДЕЛИ ----------------------------

func (s *AdminService) createModel(ctx context.Context, in models.ModelInput) (string, error) {
	switch {
	case isBlank(in.CategoryID):
		return in.ID, required("category_id")
	case isBlank(in.Brand):
		return in.ID, required("brand")
	case isBlank(in.Designation):
		return in.ID, required("designation")
	}
	id, err := resolveID(in.ID, models.ModelID(in.Brand, in.Designation))
	if err != nil {
		return in.ID, err
	}

	record := in.Record()
	record.ID = id
	return id, mapStoreError(s.repository.CreateModel(ctx, record))
}

func (s *AdminService) updateModel(ctx context.Context, in models.ModelInput) error {
	if err := requireID(in.ID); err != nil {
		return err
	}
	switch {
	case isBlank(in.Brand):
		return required("brand")
	case isBlank(in.Designation):
		return required("designation")
	}
	return mapStoreError(s.repository.UpdateModel(ctx, in.Record()))
}

func (s *AdminService) deleteModel(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		if _, err := s.repository.DeletePartsByModel(ctx, id); err != nil {
			return err
		}
		return s.repository.DeleteModel(ctx, id)
	})
	return mapStoreError(err)
}

// ---------------------------- ЗАПЧАСТИ ----------------------------

func (s *AdminService) createPart(ctx context.Context, in models.PartInput) (string, error) {
	switch {
	case isBlank(in.ModelID):
		return in.ID, required("model_id")
	case isBlank(in.Name):
		return in.ID, required("name")
	}
	id, err := resolveID(in.ID, models.GenerateID(in.Name))
	if err != nil {
		return in.ID, err
	}

	record := in.Record()
	record.ID = id
	return id, mapStoreError(s.repository.CreatePart(ctx, record))
}

func (s *AdminService) updatePart(ctx context.Context, in models.PartInput) error {
	if err := requireID(in.ID); err != nil {
		return err
	}
	if isBlank(in.Name) {
		return required("name")
	}
	return mapStoreError(s.repository.UpdatePart(ctx, in.Record()))
}

func (s *AdminService) deletePart(ctx context.Context, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	return mapStoreError(s.repository.DeletePart(ctx, id))
}

// ---------------------------- ИЗОБРАЖЕНИЯ ----------------------------

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// StorageKey ключ объекта: метка времени в миллисекундах и очищенное имя файла
func StorageKey(now time.Time, filename string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), unsafeFilenameChars.ReplaceAllString(filename, "-"))
}

// Upload сохраняет изображение и возвращает его публичный URL.
// Запчасть не меняется: URL передается отдельным createPart или updatePart.
func (s *AdminService) Upload(ctx context.Context, creds Credentials, file UploadFile) (string, error) {
	if err := s.Authorize(ctx, creds); err != nil {
		return "", err
	}
	if file.Reader == nil || file.Filename == "" {
		return "", required("file")
	}

	key := StorageKey(s.now(), file.Filename)
	if err := s.objects.Put(ctx, key, file.Reader, file.Size, file.ContentType); err != nil {
		s.logger.ErrorWithContext(ctx, "Ошибка загрузки изображения",
			interfaces.LogField{Key: "key", Value: key},
			interfaces.LogField{Key: "error", Value: err.Error()})
		return "", fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	url := s.objects.PublicURL(key)
	s.logger.InfoWithContext(ctx, "Изображение загружено",
		interfaces.LogField{Key: "key", Value: key},
		interfaces.LogField{Key: "size", Value: file.Size})
	return url, nil
}

// ---------------------------- ВСПОМОГАТЕЛЬНОЕ ----------------------------

// afterMutation сбрасывает кэш и публикует событие. Ошибки не влияют на результат операции.
func (s *AdminService) afterMutation(ctx context.Context, action models.AdminAction, entity models.EntityType, id string) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}

	if s.events == nil {
		return
	}
	event := messaging.NewCatalogChangedEvent(action, entity, id)
	if err := s.events.PublishCatalogChanged(ctx, event); err != nil {
		s.logger.WarnWithContext(ctx, "Не удалось опубликовать событие каталога",
			interfaces.LogField{Key: "event_id", Value: event.ID},
			interfaces.LogField{Key: "error", Value: err.Error()})
	}
}

// decodeData разбирает data запроса. Неизвестные поля игнорируются, как и раньше в форме админки.
func decodeData(data json.RawMessage, dst interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return required("data")
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return &ValidationError{Field: "data", Reason: "is malformed"}
	}
	return nil
}

// resolveID берет переданный id или сгенерированный из имени
func resolveID(supplied, generated string) (string, error) {
	if supplied == "" {
		if generated == "" {
			return "", &ValidationError{Field: "id", Reason: "cannot be derived from name"}
		}
		return generated, nil
	}
	if !models.IsValidID(supplied) {
		return "", &ValidationError{Field: "id", Reason: "must be a lowercase slug"}
	}
	return supplied, nil
}

func requireID(id string) error {
	if id == "" {
		return required("id")
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// mapStoreError переводит ошибки хранилища в ошибки сервиса без внутренних подробностей
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrReference):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
}
