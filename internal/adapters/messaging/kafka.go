package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

// flushTimeoutMs сколько Close ждет доставки буфера
const flushTimeoutMs = 15 * 1000

// KafkaMessaging реализация MessagingPort с использованием Kafka producer
type KafkaMessaging struct {
	producer *kafka.Producer
	logger   interfaces.LoggerPort
	done     chan struct{}
}

// NewKafkaMessaging создает producer и запускает чтение отчетов о доставке
func NewKafkaMessaging(brokers []string, clientID string, logger interfaces.LoggerPort) (*KafkaMessaging, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":            strings.Join(brokers, ","),
		"client.id":                    clientID,
		"acks":                         "all",
		"retries":                      5,
		"retry.backoff.ms":             500,
		"compression.type":             "snappy",
		"linger.ms":                    10,
		"batch.size":                   16384,
		"message.max.bytes":            1000000,
		"queue.buffering.max.messages": 100000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	k := &KafkaMessaging{
		producer: producer,
		logger:   logger,
		done:     make(chan struct{}),
	}
	go k.watchDeliveries()

	return k, nil
}

// messageToKafkaMessage добавляет служебные заголовки message_id и timestamp
func messageToKafkaMessage(topic string, message []byte, key string) *kafka.Message {
	headers := []kafka.Header{
		{Key: "message_id", Value: []byte(uuid.New().String())},
		{Key: "timestamp", Value: []byte(strconv.FormatInt(time.Now().UnixNano(), 10))},
	}

	var keyBytes []byte
	if key != "" {
		keyBytes = []byte(key)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          message,
		Key:            keyBytes,
		Headers:        headers,
	}
}

// Publish ставит сообщение в очередь producer. Доставка асинхронная.
func (k *KafkaMessaging) Publish(ctx context.Context, topic string, key string, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := k.producer.Produce(messageToKafkaMessage(topic, message, key), nil); err != nil {
		return fmt.Errorf("failed to produce message to %s: %w", topic, err)
	}
	return nil
}

// watchDeliveries логирует неудачные доставки. Повторов нет.
func (k *KafkaMessaging) watchDeliveries() {
	defer close(k.done)

	for ev := range k.producer.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error != nil {
				topic := ""
				if e.TopicPartition.Topic != nil {
					topic = *e.TopicPartition.Topic
				}
				k.logger.Error("Сообщение не доставлено в Kafka",
					interfaces.LogField{Key: "topic", Value: topic},
					interfaces.LogField{Key: "error", Value: e.TopicPartition.Error.Error()},
				)
			}
		case kafka.Error:
			k.logger.Warn("Ошибка Kafka producer",
				interfaces.LogField{Key: "code", Value: e.Code().String()},
				interfaces.LogField{Key: "error", Value: e.Error()},
			)
		}
	}
}

// Close дожидается отправки буфера и закрывает producer
func (k *KafkaMessaging) Close() error {
	if remaining := k.producer.Flush(flushTimeoutMs); remaining > 0 {
		k.logger.Warn("Не все сообщения отправлены в Kafka",
			interfaces.LogField{Key: "remaining", Value: remaining})
	}
	k.producer.Close()
	<-k.done
	return nil
}
