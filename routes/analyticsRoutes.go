package routes

import (
	"prakriti-darpan/controllers"

	"github.com/gin-gonic/gin"
)

func AnalyticsRoutes(r *gin.Engine, ac *controllers.AnalyticsController) {
	r.GET("/api/analytics", ac.GetReportAnalytics)
}
