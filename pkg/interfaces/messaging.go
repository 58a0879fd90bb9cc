package interfaces

import "context"

// MessagingPort определяет интерфейс публикации событий во внешнюю шину
type MessagingPort interface {
	// Publish публикует сообщение в указанную тему
	Publish(ctx context.Context, topic string, key string, message []byte) error

	// Close дожидается доставки буферизованных сообщений и закрывает соединение
	Close() error
}
