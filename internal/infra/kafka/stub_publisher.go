package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher is used when no brokers are configured.
func NewStubPublisher(log *zap.Logger) *StubPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &StubPublisher{logger: log}
}

func (p *StubPublisher) logEvent(eventType string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now()
	}
	p.logger.Info("stub event published",
		append([]zap.Field{zap.String("event_type", eventType), zap.Time("timestamp", at.UTC())}, fields...)...,
	)
}

func (p *StubPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.logEvent(EventUserRegistered, event.RegisteredAt,
		zap.Int64("user_id", event.UserID),
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.String("role", event.Role),
	)
	return nil
}

func (p *StubPublisher) PublishUserLoggedOut(_ context.Context, event domain.UserLoggedOutEvent) error {
	p.logEvent(EventUserLoggedOut, event.LoggedOutAt,
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.Time("token_expires_at", event.TokenExpiresAt),
	)
	return nil
}

func (p *StubPublisher) PublishAttractionVisited(_ context.Context, event domain.AttractionVisitedEvent) error {
	p.logEvent(EventAttractionVisited, event.VisitedAt,
		zap.Int64("attraction_id", event.AttractionID),
		zap.Int64("traffic_count", event.TrafficCount),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
