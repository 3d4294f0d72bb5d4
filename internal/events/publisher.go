package events

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Waihonggg/leave-app-system/internal/shared/contextutil"
)

const (
	TypeSubmitted = "leave.submitted"
	TypeApproved  = "leave.approved"
	TypeRejected  = "leave.rejected"
	TypeCancelled = "leave.cancelled"
)

// Event is one leave lifecycle transition. Publishing is best-effort: like
// notifications, a publish failure is logged and swallowed by callers.
type Event struct {
	Type          string    `json:"type"`
	ApplicationID int       `json:"application_id"`
	Username      string    `json:"username"`
	LeaveType     string    `json:"leave_type"`
	Status        string    `json:"status"`
	Days          int       `json:"days"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	RequestID     string    `json:"request_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger ...*zap.Logger) Publisher {
	l := zap.L().Named("events.kafka")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("events.kafka")
	}
	writer := &kafkago.Writer{
		Addr:     kafkago.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafkago.LeastBytes{},
	}
	return &kafkaPublisher{writer: writer, logger: l}
}

func (p *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = contextutil.GetRequestID(ctx)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := kafkago.Message{
		Key:   []byte(e.Username),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Warn("event publish failed",
			zap.String("type", e.Type),
			zap.Int("application_id", e.ApplicationID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, e Event) error { return nil }
func (NopPublisher) Close() error                               { return nil }
