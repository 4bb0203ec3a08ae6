package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/tourism-api/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: c.GetString("trace_id"),
	}
}

// ValidationErrorResponse lists rejected request fields by their JSON name.
type ValidationErrorResponse struct {
	Errors  map[string]string `json:"errors"`
	Message string            `json:"message"`
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports the state of each dependency.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// RegisterRequest is the body of POST /api/users/register.
type RegisterRequest struct {
	Name     string `json:"name" binding:"notblank"`
	Email    string `json:"email" binding:"notblank,email"`
	Password string `json:"password" binding:"min=6"`
	Role     string `json:"role" binding:"notblank"`
}

func (RegisterRequest) validationMessages() map[string]string {
	return map[string]string{
		"name.notblank":  "Name is required",
		"email.notblank": "Email is required",
		"email.email":    "Invalid email format",
		"password.min":   "Password must be at least 6 characters long",
		"role.notblank":  "Role is required",
	}
}

// UserResponse is returned after registration.
type UserResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func newUserResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

// LoginRequest is the body of POST /api/users/login. Emptiness is checked by the service
// so the messages match the credentials error path.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ProfileUpdateRequest holds the optional fields of PUT /api/users/profile.
type ProfileUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// ProfileResponse is the public view of the caller's account.
type ProfileResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AttractionRequest is the body of POST /api/attractions.
type AttractionRequest struct {
	Name        string   `json:"name" binding:"notblank"`
	Description string   `json:"description" binding:"notblank"`
	EntranceFee *float64 `json:"entranceFee" binding:"required,gte=0"`
	Photos      []string `json:"photos"`
}

func (AttractionRequest) validationMessages() map[string]string {
	return map[string]string{
		"name.notblank":        "Name is required",
		"description.notblank": "Description is required",
		"entranceFee.required": "Entrance fee is required",
		"entranceFee.gte":      "Entrance fee must be a positive number",
	}
}

// AttractionUpdateRequest is the body of PUT /api/attractions/:id. Both
// description spellings are accepted; description wins when both are sent.
type AttractionUpdateRequest struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	ShortDescription *string  `json:"shortDescription"`
	EntranceFee      *float64 `json:"entranceFee"`
	Photos           []string `json:"photos"`
}

func (r AttractionUpdateRequest) toDomain() domain.AttractionUpdate {
	description := r.Description
	if description == nil {
		description = r.ShortDescription
	}
	return domain.AttractionUpdate{
		Name:             r.Name,
		ShortDescription: description,
		EntranceFee:      r.EntranceFee,
		Photos:           r.Photos,
	}
}

// AttractionSummary is the list and update representation of an attraction.
type AttractionSummary struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	ShortDescription string   `json:"shortDescription"`
	EntranceFee      float64  `json:"entranceFee"`
	Photos           []string `json:"photos"`
	TrafficCount     int64    `json:"trafficCount"`
}

func newAttractionSummary(a domain.Attraction) AttractionSummary {
	photos := a.Photos
	if photos == nil {
		photos = []string{}
	}
	return AttractionSummary{
		ID:               a.ID,
		Name:             a.Name,
		ShortDescription: a.ShortDescription,
		EntranceFee:      a.EntranceFee,
		Photos:           photos,
		TrafficCount:     a.TrafficCount,
	}
}

// AttractionDetail is returned by GET /api/attractions/:id.
type AttractionDetail struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	EntranceFee float64  `json:"entranceFee"`
	Photos      []string `json:"photos"`
}

// TrafficResponse carries the counter after a click was recorded.
type TrafficResponse struct {
	TrafficCount int64 `json:"trafficCount"`
}

// TripRequest is the body of POST and PUT /api/trips.
type TripRequest struct {
	Name          string   `json:"name" binding:"required,max=255"`
	Duration      []string `json:"duration" binding:"required,min=1"`
	AttractionIDs []int64  `json:"attractionIds" binding:"required"`
}

func (TripRequest) validationMessages() map[string]string {
	return map[string]string{
		"name.required":          "Name is required",
		"name.max":               "Name must not exceed 255 characters",
		"duration.required":      "Duration is required",
		"duration.min":           "Duration cannot be empty",
		"attractionIds.required": "Attraction IDs are required",
	}
}

func (r TripRequest) toDomain() domain.TripDraft {
	return domain.TripDraft{Name: r.Name, Days: r.Duration, AttractionIDs: r.AttractionIDs}
}

// TripResponse is the API view of a trip.
type TripResponse struct {
	ID          int64               `json:"id"`
	Name        string              `json:"name"`
	Duration    []string            `json:"duration"`
	Attractions []AttractionSummary `json:"attractions"`
}

func newTripResponse(t domain.Trip) TripResponse {
	resp := TripResponse{
		ID:          t.ID,
		Name:        t.Name,
		Duration:    t.Days,
		Attractions: make([]AttractionSummary, 0, len(t.Attractions)),
	}
	if resp.Duration == nil {
		resp.Duration = []string{}
	}
	for _, a := range t.Attractions {
		resp.Attractions = append(resp.Attractions, newAttractionSummary(a))
	}
	return resp
}

// TripCreatedResponse is returned by POST /api/trips.
type TripCreatedResponse struct {
	Message string `json:"message"`
	TripID  int64  `json:"tripId"`
}

// ReviewRequest is the body of POST /api/reviews/attraction/:id.
type ReviewRequest struct {
	Rating  *int   `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"notblank"`
}

func (ReviewRequest) validationMessages() map[string]string {
	return map[string]string{
		"rating.required":  "Rating is required",
		"rating.min":       "Rating must be at least 1",
		"rating.max":       "Rating must be at most 5",
		"comment.notblank": "Comment is required",
	}
}

// ReviewCreatedResponse is returned once a review is stored.
type ReviewCreatedResponse struct {
	Message  string `json:"message"`
	ReviewID int64  `json:"reviewId"`
}

// ReviewResponse is one entry of an attraction's review list.
type ReviewResponse struct {
	User    string    `json:"user"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
	Date    time.Time `json:"date"`
}

// AnalyticsResponse is returned by GET /api/admin/analytics.
type AnalyticsResponse struct {
	TotalClicks            int64    `json:"totalClicks"`
	MostVisitedAttractions []string `json:"mostVisitedAttractions"`
}
