package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/transport/http/middleware"
)

// TrafficReporter is the subset of usecase.AnalyticsService the endpoint needs.
type TrafficReporter interface {
	Traffic(ctx context.Context) (domain.TrafficAnalytics, error)
}

// AnalyticsHandler exposes admin traffic analytics.
type AnalyticsHandler struct {
	analytics TrafficReporter
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics TrafficReporter) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// RegisterRoutes binds the analytics route.
func (h *AnalyticsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/analytics", middleware.RequireRole(domain.RoleAdmin), h.traffic)
}

func (h *AnalyticsHandler) traffic(c *gin.Context) {
	report, err := h.analytics.Traffic(c.Request.Context())
	if err != nil {
		respondUnexpected(c, err)
		return
	}

	names := report.MostVisitedAttractions
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, AnalyticsResponse{TotalClicks: report.TotalClicks, MostVisitedAttractions: names})
}
