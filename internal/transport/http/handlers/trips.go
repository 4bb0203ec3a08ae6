package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/transport/http/middleware"
	"github.com/arklim/tourism-api/internal/usecase"
)

// TripPlanner is the subset of usecase.TripService the endpoints need.
type TripPlanner interface {
	List(ctx context.Context) ([]domain.Trip, error)
	Get(ctx context.Context, id int64) (domain.Trip, error)
	Create(ctx context.Context, draft domain.TripDraft) (int64, error)
	Replace(ctx context.Context, id int64, draft domain.TripDraft) (domain.Trip, error)
	Delete(ctx context.Context, id int64) error
}

// TripHandler exposes trip endpoints. Reads need a token, writes need ADMIN.
type TripHandler struct {
	trips TripPlanner
}

// NewTripHandler constructs TripHandler.
func NewTripHandler(trips TripPlanner) *TripHandler {
	return &TripHandler{trips: trips}
}

// RegisterRoutes binds trip routes.
func (h *TripHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)

	r.GET("", middleware.RequireAuth(), h.list)
	r.GET("/:id", middleware.RequireAuth(), h.get)
	r.POST("", admin, h.create)
	r.PUT("/:id", admin, h.replace)
	r.DELETE("/:id", admin, h.delete)
}

func tripNotFound(id int64) ErrorCase {
	return ErrorCase{Err: usecase.ErrTripNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf("Trip not found with ID: %d", id)}
}

func (h *TripHandler) list(c *gin.Context) {
	trips, err := h.trips.List(c.Request.Context())
	if err != nil {
		respondUnexpected(c, err)
		return
	}

	resp := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		resp = append(resp, newTripResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TripHandler) get(c *gin.Context) {
	id, ok := pathID(c, "Invalid trip ID")
	if !ok {
		return
	}

	trip, err := h.trips.Get(c.Request.Context(), id)
	if err != nil {
		respondUnexpected(c, err, tripNotFound(id))
		return
	}

	c.JSON(http.StatusOK, newTripResponse(trip))
}

func (h *TripHandler) create(c *gin.Context) {
	var req TripRequest
	if !bindJSON(c, &req) {
		return
	}

	id, err := h.trips.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondUnexpected(c, err)
		return
	}

	c.JSON(http.StatusCreated, TripCreatedResponse{Message: "Trip created successfully", TripID: id})
}

func (h *TripHandler) replace(c *gin.Context) {
	id, ok := pathID(c, "Invalid trip ID")
	if !ok {
		return
	}

	var req TripRequest
	if !bindJSON(c, &req) {
		return
	}

	trip, err := h.trips.Replace(c.Request.Context(), id, req.toDomain())
	if err != nil {
		respondUnexpected(c, err, tripNotFound(id))
		return
	}

	c.JSON(http.StatusOK, newTripResponse(trip))
}

func (h *TripHandler) delete(c *gin.Context) {
	id, ok := pathID(c, "Invalid trip ID")
	if !ok {
		return
	}

	if err := h.trips.Delete(c.Request.Context(), id); err != nil {
		respondUnexpected(c, err, tripNotFound(id))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Trip deleted successfully"})
}
