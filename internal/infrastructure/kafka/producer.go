package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/style-finder/internal/cfg"
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Producer публикует события анализа в топик Kafka.
// Значение сообщения — google.protobuf.Struct в бинарном виде, ключ — идентификатор запроса.
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchSize:    10,
		BatchTimeout: 500 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// PublishAnalysis сериализует событие и отправляет его в топик.
func (p *Producer) PublishAnalysis(ctx context.Context, event *domain.AnalysisEvent) error {
	value, err := EventPayload(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	key := event.RequestID
	if key == "" {
		key = uuid.NewString()
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (p *Producer) EnsureTopic(timeout time.Duration) error {
	conn, err := kafka.Dial(p.cfg.NetworkMode, p.cfg.Brokers[0])
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		err := conn.CreateTopics(kafka.TopicConfig{
			Topic:             p.cfg.Topic,
			NumPartitions:     p.cfg.Partitions,
			ReplicationFactor: p.cfg.ReplicationFactor,
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), fmt.Errorf("failed to create topic %s: %w", p.cfg.Topic, err))
		}
		return nil
	case <-time.After(timeout):
		_ = conn.Close()
		return e.Wrap(whereami.WhereAmI(), fmt.Errorf("timeout: %v, topic: %s", timeout, p.cfg.Topic))
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// EventPayload кодирует событие в protobuf.
func EventPayload(event *domain.AnalysisEvent) ([]byte, error) {
	msg, err := toStruct(event)
	if err != nil {
		return nil, err
	}

	return proto.Marshal(msg)
}

func toStruct(event *domain.AnalysisEvent) (*structpb.Struct, error) {
	const op = "producer.toStruct"

	eventID := event.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}

	msg, err := structpb.NewStruct(map[string]any{
		"event_id":          eventID,
		"request_id":        event.RequestID,
		"matched_item":      event.MatchedItem,
		"matched_image_url": event.MatchedImageURL,
		"score":             event.Score,
		"confident":         event.Confident,
		"items_count":       event.ItemsCount,
		"alternatives":      event.Alternatives,
		"duration_ms":       event.Duration.Milliseconds(),
		"created_at":        event.CreatedAt.UnixNano(),
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return msg, nil
}
