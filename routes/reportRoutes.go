package routes

import (
	"prakriti-darpan/controllers"
	"prakriti-darpan/middlewares"

	"github.com/gin-gonic/gin"
)

// ReportRoutes sets up the report and classification routes. Each middleware
// in classify guards the requests that call the classifier: every analyze
// request, and create requests that arrive without an analysis.
func ReportRoutes(r *gin.Engine, rc *controllers.ReportController, classify ...gin.HandlerFunc) {
	api := r.Group("/api")
	{
		api.POST("/analyze", chain(classify, rc.AnalyzeImage)...)
	}

	reports := r.Group("/api/reports")
	{
		reports.GET("", rc.GetAllReports)
		reports.POST("", chain(unlessAnalyzed(classify), rc.CreateReport)...)
		reports.DELETE("", rc.ClearReports)
		reports.POST("/seed", rc.SeedReports)
		reports.GET("/:id", rc.GetReport)
		reports.PUT("/:id", rc.UpdateReport)
		reports.DELETE("/:id", rc.DeleteReport)
	}
}

func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	return append(handlers, handler)
}

func unlessAnalyzed(middleware []gin.HandlerFunc) []gin.HandlerFunc {
	skipped := make([]gin.HandlerFunc, len(middleware))
	for i, mw := range middleware {
		skipped[i] = middlewares.SkipWhen(controllers.CarriesAnalysis, mw)
	}
	return skipped
}
