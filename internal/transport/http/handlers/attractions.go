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

const invalidAttractionID = "Invalid attraction ID"

// AttractionCatalogue is the subset of usecase.AttractionService the endpoints need.
type AttractionCatalogue interface {
	List(ctx context.Context) ([]domain.Attraction, error)
	Get(ctx context.Context, id int64) (domain.Attraction, error)
	Create(ctx context.Context, attraction domain.Attraction) (domain.Attraction, error)
	Update(ctx context.Context, id int64, update domain.AttractionUpdate) (domain.Attraction, error)
	Delete(ctx context.Context, id int64) error
	RecordVisit(ctx context.Context, id int64, visitor string) (int64, error)
}

// AttractionHandler exposes attraction CRUD and click tracking.
type AttractionHandler struct {
	attractions AttractionCatalogue
}

// NewAttractionHandler constructs AttractionHandler.
func NewAttractionHandler(attractions AttractionCatalogue) *AttractionHandler {
	return &AttractionHandler{attractions: attractions}
}

// RegisterRoutes binds attraction routes. Listing is public; everything else needs a token.
func (h *AttractionHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := middleware.RequireRole(domain.RoleAdmin)

	r.GET("", h.list)
	r.GET("/:id", middleware.RequireAuth(), h.get)
	r.POST("", admin, h.create)
	r.PUT("/:id", admin, h.update)
	r.DELETE("/:id", admin, h.delete)
	r.POST("/:id/traffic", middleware.RequireAuth(), h.recordVisit)
}

func notFoundWithID(id int64) ErrorCase {
	return ErrorCase{Err: usecase.ErrAttractionNotFound, Status: http.StatusNotFound, Message: fmt.Sprintf("Attraction not found with ID: %d", id)}
}

func (h *AttractionHandler) list(c *gin.Context) {
	attractions, err := h.attractions.List(c.Request.Context())
	if err != nil {
		respondUnexpected(c, err)
		return
	}

	resp := make([]AttractionSummary, 0, len(attractions))
	for _, a := range attractions {
		resp = append(resp, newAttractionSummary(a))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AttractionHandler) get(c *gin.Context) {
	id, ok := pathID(c, invalidAttractionID)
	if !ok {
		return
	}

	attraction, err := h.attractions.Get(c.Request.Context(), id)
	if err != nil {
		respondUnexpected(c, err, ErrorCase{
			Err:     usecase.ErrAttractionNotFound,
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("Attraction not found with id: %d", id),
		})
		return
	}

	photos := attraction.Photos
	if photos == nil {
		photos = []string{}
	}
	c.JSON(http.StatusOK, AttractionDetail{
		Name:        attraction.Name,
		Description: attraction.ShortDescription,
		EntranceFee: attraction.EntranceFee,
		Photos:      photos,
	})
}

func (h *AttractionHandler) create(c *gin.Context) {
	var req AttractionRequest
	if !bindJSON(c, &req) {
		return
	}

	_, err := h.attractions.Create(c.Request.Context(), domain.Attraction{
		Name:             req.Name,
		ShortDescription: req.Description,
		EntranceFee:      *req.EntranceFee,
		Photos:           req.Photos,
	})
	if err != nil {
		respondUnexpected(c, err)
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "Attraction added successfully"})
}

func (h *AttractionHandler) update(c *gin.Context) {
	id, ok := pathID(c, invalidAttractionID)
	if !ok {
		return
	}

	var req AttractionUpdateRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.attractions.Update(c.Request.Context(), id, req.toDomain())
	if err != nil {
		respondUnexpected(c, err, notFoundWithID(id))
		return
	}

	c.JSON(http.StatusOK, newAttractionSummary(updated))
}

func (h *AttractionHandler) delete(c *gin.Context) {
	id, ok := pathID(c, invalidAttractionID)
	if !ok {
		return
	}

	if err := h.attractions.Delete(c.Request.Context(), id); err != nil {
		respondUnexpected(c, err, notFoundWithID(id))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Attraction deleted successfully"})
}

func (h *AttractionHandler) recordVisit(c *gin.Context) {
	id, ok := pathID(c, invalidAttractionID)
	if !ok {
		return
	}

	identity, _ := middleware.GetIdentity(c)

	count, err := h.attractions.RecordVisit(c.Request.Context(), id, identity.Email)
	if err != nil {
		respondUnexpected(c, err, notFoundWithID(id))
		return
	}

	c.JSON(http.StatusOK, TrafficResponse{TrafficCount: count})
}
