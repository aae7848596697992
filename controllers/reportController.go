package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"prakriti-darpan/classifier"
	"prakriti-darpan/models"
	"prakriti-darpan/services"
	"prakriti-darpan/store"
	"prakriti-darpan/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// ReportController serves the report endpoints.
type ReportController struct {
	store   *store.Store
	reports *services.ReportService
	logger  *slog.Logger
}

func NewReportController(st *store.Store, reports *services.ReportService, logger *slog.Logger) *ReportController {
	return &ReportController{store: st, reports: reports, logger: logger}
}

// AnalyzeImage classifies an uploaded photo without saving it
func (rc *ReportController) AnalyzeImage(c *gin.Context) {
	var input struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := utils.DecodeImage(input.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := rc.reports.Analyze(c.Request.Context(), img)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// CarriesAnalysis reports whether a create request brings its own analysis,
// in which case CreateReport will not call the classifier. The body stays
// readable for the handler.
func CarriesAnalysis(c *gin.Context) bool {
	var input struct {
		Analysis *models.Analysis `json:"analysis,omitempty"`
	}
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		return false
	}
	return input.Analysis != nil
}

// CreateReport stores a new report. A supplied analysis is checked for shape
// and litter but is not matched against the image; without one the photo is
// classified first.
func (rc *ReportController) CreateReport(c *gin.Context) {
	var input struct {
		Image        string           `json:"image" binding:"required"`
		LocationName string           `json:"locationName" binding:"max=200"`
		Latitude     *float64         `json:"latitude,omitempty" binding:"omitempty,latitude"`
		Longitude    *float64         `json:"longitude,omitempty" binding:"omitempty,longitude"`
		Analysis     *models.Analysis `json:"analysis,omitempty"`
	}
	if err := c.ShouldBindBodyWith(&input, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	img, err := utils.DecodeImage(input.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := rc.reports.Submit(c.Request.Context(), services.Submission{
		Image:        img,
		LocationName: input.LocationName,
		Latitude:     input.Latitude,
		Longitude:    input.Longitude,
		Analysis:     input.Analysis,
	})
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GetAllReports lists reports newest first, with optional filters and paging
func (rc *ReportController) GetAllReports(c *gin.Context) {
	trashType := c.Query("trashType")
	severity := c.Query("severity")
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}

	var filters []func(models.Report) bool
	if trashType != "" && trashType != "all" {
		t, err := models.ParseTrashType(trashType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filters = append(filters, func(r models.Report) bool { return r.TrashType == t })
	}
	if severity != "" && severity != "all" {
		s, err := models.ParseSeverity(severity)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filters = append(filters, func(r models.Report) bool { return r.Severity == s })
	}
	if search != "" {
		filters = append(filters, func(r models.Report) bool {
			return strings.Contains(strings.ToLower(r.LocationName), search) ||
				strings.Contains(strings.ToLower(r.Description), search)
		})
	}

	all, err := rc.store.List(c.Request.Context())
	if err != nil {
		rc.respondError(c, err)
		return
	}

	matched := make([]models.Report, 0, len(all))
outer:
	for _, r := range all {
		for _, keep := range filters {
			if !keep(r) {
				continue outer
			}
		}
		matched = append(matched, r)
	}

	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	c.JSON(http.StatusOK, gin.H{
		"reports":      matched[start:end],
		"totalReports": total,
		"totalPages":   (total + limit - 1) / limit,
		"currentPage":  page,
	})
}

// GetReport retrieves a report by its ID
func (rc *ReportController) GetReport(c *gin.Context) {
	report, ok, err := rc.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		rc.respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport edits the user-editable fields of a report
func (rc *ReportController) UpdateReport(c *gin.Context) {
	var input struct {
		LocationName *string `json:"locationName,omitempty" binding:"omitempty,max=200"`
		TrashType    *string `json:"trashType,omitempty"`
		Severity     *string `json:"severity,omitempty"`
		Description  *string `json:"description,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	edit := services.Edit{LocationName: input.LocationName, Description: input.Description}
	if input.TrashType != nil {
		t, err := models.ParseTrashType(*input.TrashType)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trash type"})
			return
		}
		edit.TrashType = &t
	}
	if input.Severity != nil {
		s, err := models.ParseSeverity(*input.Severity)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid severity"})
			return
		}
		edit.Severity = &s
	}

	report, err := rc.reports.Edit(c.Request.Context(), c.Param("id"), edit)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport removes a report; deleting an unknown id succeeds
func (rc *ReportController) DeleteReport(c *gin.Context) {
	if err := rc.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}

// ClearReports wipes the locally stored reports
func (rc *ReportController) ClearReports(c *gin.Context) {
	if err := rc.store.Clear(c.Request.Context()); err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Local reports cleared", "mode": rc.store.Mode()})
}

// SeedReports loads the demo reports when the store is empty
func (rc *ReportController) SeedReports(c *gin.Context) {
	ctx := c.Request.Context()
	if err := rc.store.SeedIfEmpty(ctx); err != nil {
		rc.respondError(c, err)
		return
	}
	reports, err := rc.store.List(ctx)
	if err != nil {
		rc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "totalReports": len(reports)})
}

func (rc *ReportController) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidReport):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrReportNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
	case errors.Is(err, classifier.ErrNotGarbage):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No garbage detected in this image"})
	case errors.Is(err, services.ErrClassifierUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrClassificationFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to analyze image"})
	case errors.Is(err, store.ErrStorageExhausted):
		c.JSON(http.StatusInsufficientStorage, gin.H{"error": "Storage is full; delete some reports and try again"})
	default:
		rc.logger.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
