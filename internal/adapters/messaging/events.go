package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/google/uuid"
)

// CatalogChangedTopic тема по умолчанию для событий изменения каталога
const CatalogChangedTopic = "catalog.changed"

// NewCatalogChangedEvent собирает событие для выполненного действия
func NewCatalogChangedEvent(action models.AdminAction, entity models.EntityType, entityID string) models.CatalogChangedEvent {
	return models.CatalogChangedEvent{
		ID:         uuid.New().String(),
		Action:     action,
		EntityType: entity,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

// EventPublisher сериализует события каталога и отправляет их в шину
type EventPublisher struct {
	bus   interfaces.MessagingPort
	topic string
}

// NewEventPublisher создает издателя. Пустая тема заменяется на CatalogChangedTopic.
func NewEventPublisher(bus interfaces.MessagingPort, topic string) *EventPublisher {
	if topic == "" {
		topic = CatalogChangedTopic
	}
	return &EventPublisher{bus: bus, topic: topic}
}

// PublishCatalogChanged публикует событие с ключом entity_type:entity_id
func (p *EventPublisher) PublishCatalogChanged(ctx context.Context, event models.CatalogChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	key := string(event.EntityType) + ":" + event.EntityID
	return p.bus.Publish(ctx, p.topic, key, payload)
}
