package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"prakriti-darpan/services"
	"prakriti-darpan/store"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	store     *store.Store
	analytics *services.AnalyticsService
	logger    *slog.Logger
	now       func() time.Time
}

func NewAnalyticsController(st *store.Store, analytics *services.AnalyticsService, logger *slog.Logger) *AnalyticsController {
	return &AnalyticsController{store: st, analytics: analytics, logger: logger, now: time.Now}
}

// GetReportAnalytics returns dashboard aggregates over all stored reports
func (ac *AnalyticsController) GetReportAnalytics(c *gin.Context) {
	reports, err := ac.store.List(c.Request.Context())
	if err != nil {
		ac.logger.Error("analytics: list reports", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports"})
		return
	}
	c.JSON(http.StatusOK, ac.analytics.Generate(reports, ac.now()))
}
