package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/infra/config"
)

const schemaVersion = "1.0"

// Event types, also used as topic suffixes.
const (
	EventUserRegistered    = "user.registered"
	EventUserLoggedOut     = "user.logged_out"
	EventAttractionVisited = "attraction.visited"
)

// EventPublisher implements port.EventPublisher on top of Producer.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type eventEnvelope struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Subject   string            `json:"subject,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Payload   any               `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, subject string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now()
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}

	metadata := map[string]string{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}
	if sc := trace.SpanFromContext(ctx).SpanContext(); sc.IsValid() {
		metadata["trace_id"] = sc.TraceID().String()
	}

	body, err := json.Marshal(eventEnvelope{
		EventID:   eventID,
		EventType: eventType,
		Subject:   subject,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(body),
	}
	if subject != "" {
		message.Key = sarama.StringEncoder(subject)
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishUserRegistered publishes user.registered events keyed by email.
func (p *EventPublisher) PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload := struct {
		UserID       int64     `json:"user_id"`
		Email        string    `json:"email"`
		Role         string    `json:"role"`
		RegisteredAt time.Time `json:"registered_at"`
	}{
		UserID:       event.UserID,
		Email:        event.Email,
		Role:         event.Role,
		RegisteredAt: event.RegisteredAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventUserRegistered, event.Email, event.RegisteredAt, payload)
}

// PublishUserLoggedOut publishes user.logged_out events. The token itself is never emitted.
func (p *EventPublisher) PublishUserLoggedOut(ctx context.Context, event domain.UserLoggedOutEvent) error {
	payload := struct {
		Email          string    `json:"email"`
		LoggedOutAt    time.Time `json:"logged_out_at"`
		TokenExpiresAt time.Time `json:"token_expires_at"`
	}{
		Email:          event.Email,
		LoggedOutAt:    event.LoggedOutAt.UTC(),
		TokenExpiresAt: event.TokenExpiresAt.UTC(),
	}

	return p.publish(ctx, event.EventID, EventUserLoggedOut, event.Email, event.LoggedOutAt, payload)
}

// PublishAttractionVisited publishes attraction.visited events keyed by attraction id.
func (p *EventPublisher) PublishAttractionVisited(ctx context.Context, event domain.AttractionVisitedEvent) error {
	payload := struct {
		AttractionID int64     `json:"attraction_id"`
		TrafficCount int64     `json:"traffic_count"`
		VisitedBy    string    `json:"visited_by,omitempty"`
		VisitedAt    time.Time `json:"visited_at"`
	}{
		AttractionID: event.AttractionID,
		TrafficCount: event.TrafficCount,
		VisitedBy:    event.VisitedBy,
		VisitedAt:    event.VisitedAt.UTC(),
	}

	subject := strconv.FormatInt(event.AttractionID, 10)
	return p.publish(ctx, event.EventID, EventAttractionVisited, subject, event.VisitedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
