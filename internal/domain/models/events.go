package models

import "time"

// CatalogChangedEvent событие об изменении каталога для внешних потребителей
type CatalogChangedEvent struct {
	ID         string      `json:"id"`
	Action     AdminAction `json:"action"`
	EntityType EntityType  `json:"entity_type"`
	EntityID   string      `json:"entity_id"`
	OccurredAt time.Time   `json:"occurred_at"`
}
