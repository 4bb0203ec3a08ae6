package domain

import "time"

// UserRegisteredEvent represents the payload for tourism.user.registered messages.
type UserRegisteredEvent struct {
	EventID      string
	UserID       int64
	Email        string
	Role         string
	RegisteredAt time.Time
}

// UserLoggedOutEvent represents the payload for tourism.user.logged_out messages.
type UserLoggedOutEvent struct {
	EventID        string
	Email          string
	LoggedOutAt    time.Time
	TokenExpiresAt time.Time
}

// AttractionVisitedEvent represents the payload for tourism.attraction.visited messages.
type AttractionVisitedEvent struct {
	EventID      string
	AttractionID int64
	TrafficCount int64
	VisitedBy    string
	VisitedAt    time.Time
}
