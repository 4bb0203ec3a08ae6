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

// ReviewBook is the subset of usecase.ReviewService the endpoints need.
type ReviewBook interface {
	Add(ctx context.Context, attractionID int64, authorEmail string, rating int, comment string) (int64, error)
	ListForAttraction(ctx context.Context, attractionID int64) ([]domain.Review, error)
}

// ReviewHandler exposes attraction reviews.
type ReviewHandler struct {
	reviews ReviewBook
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(reviews ReviewBook) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// RegisterRoutes binds review routes.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/attraction/:id", middleware.RequireAuth(), h.add)
	r.GET("/attraction/:id", middleware.RequireAuth(), h.list)
}

func (h *ReviewHandler) add(c *gin.Context) {
	id, ok := pathID(c, invalidAttractionID)
	if !ok {
		return
	}

	var req ReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	identity, _ := middleware.GetIdentity(c)

	reviewID, err := h.reviews.Add(c.Request.Context(), id, identity.Email, *req.Rating, req.Comment)
	if err != nil {
		respondUnexpected(c, err,
			notFoundWithID(id),
			ErrorCase{Err: usecase.ErrUserNotFound, Status: http.StatusNotFound, Message: "User not found"},
		)
		return
	}

	c.JSON(http.StatusCreated, ReviewCreatedResponse{Message: "Review added successfully", ReviewID: reviewID})
}

func (h *ReviewHandler) list(c *gin.Context) {
	id, ok := pathID(c, invalidAttractionID)
	if !ok {
		return
	}

	reviews, err := h.reviews.ListForAttraction(c.Request.Context(), id)
	if err != nil {
		respondUnexpected(c, err, ErrorCase{
			Err:     usecase.ErrAttractionNotFound,
			Status:  http.StatusNotFound,
			Message: fmt.Sprintf("Attraction not found with ID: %d", id),
		})
		return
	}

	resp := make([]ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, ReviewResponse{User: r.UserName, Rating: r.Rating, Comment: r.Comment, Date: r.CreatedAt})
	}
	c.JSON(http.StatusOK, resp)
}
