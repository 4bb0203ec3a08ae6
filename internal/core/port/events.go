package port

import (
	"context"

	"github.com/arklim/tourism-api/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event domain.UserRegisteredEvent) error
	PublishUserLoggedOut(ctx context.Context, event domain.UserLoggedOutEvent) error
	PublishAttractionVisited(ctx context.Context, event domain.AttractionVisitedEvent) error
}
