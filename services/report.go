package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"prakriti-darpan/classifier"
	"prakriti-darpan/models"
	"prakriti-darpan/store"
	"prakriti-darpan/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var (
	// ErrClassificationFailed means the classifier errored or returned an
	// answer that cannot back a report.
	ErrClassificationFailed = errors.New("image classification failed")
	// ErrClassifierUnavailable means no classifier is configured.
	ErrClassifierUnavailable = errors.New("image classification is not configured")
	// ErrReportNotFound is returned by Edit for an unknown id.
	ErrReportNotFound = errors.New("report not found")
)

// Submission is a new report as received from a client.
type Submission struct {
	Image        utils.Image
	LocationName string
	Latitude     *float64
	Longitude    *float64
	// Analysis, when set, is a result the client already obtained from
	// Analyze; the image is not classified a second time.
	Analysis *models.Analysis
}

// Edit lists the report fields a user may change. Nil fields are kept.
type Edit struct {
	LocationName *string
	TrashType    *models.TrashType
	Severity     *models.Severity
	Description  *string
}

// ReportService runs the photo -> classification -> stored report flow.
type ReportService struct {
	store      *store.Store
	classifier classifier.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewReportService wires the store and classifier. c may be nil, in which case
// only submissions carrying an analysis are accepted.
func NewReportService(st *store.Store, c classifier.Classifier, logger *slog.Logger) *ReportService {
	return &ReportService{store: st, classifier: c, logger: logger, now: time.Now}
}

// Analyze classifies an image without storing anything.
func (s *ReportService) Analyze(ctx context.Context, img utils.Image) (models.Analysis, error) {
	if s.classifier == nil {
		return models.Analysis{}, ErrClassifierUnavailable
	}

	analysis, err := s.classifier.Classify(ctx, img.Data, img.MIMEType)
	if err != nil {
		s.logger.Error("classification failed", "err", err)
		return models.Analysis{}, fmt.Errorf("%w: %v", ErrClassificationFailed, err)
	}
	if err := checkAnalysis(analysis); err != nil {
		return analysis, err
	}
	return analysis, nil
}

// Submit classifies the image (unless an analysis is supplied) and stores a new
// report. Nothing is stored when the image shows no litter.
func (s *ReportService) Submit(ctx context.Context, sub Submission) (models.Report, error) {
	var analysis models.Analysis
	if sub.Analysis != nil {
		analysis = *sub.Analysis
		if err := checkAnalysis(analysis); err != nil {
			return models.Report{}, err
		}
	} else {
		var err error
		if analysis, err = s.Analyze(ctx, sub.Image); err != nil {
			return models.Report{}, err
		}
	}

	raw, err := json.Marshal(analysis)
	if err != nil {
		return models.Report{}, fmt.Errorf("encode analysis: %w", err)
	}

	location := strings.TrimSpace(sub.LocationName)
	if location == "" {
		location = analysis.SuggestedLocationType
	}

	report := models.Report{
		ID:           uuid.NewString(),
		Timestamp:    s.now().UnixMilli(),
		ImageURL:     sub.Image.DataURL(),
		LocationName: location,
		Latitude:     sub.Latitude,
		Longitude:    sub.Longitude,
		TrashType:    analysis.TrashType,
		Severity:     analysis.Severity,
		Description:  analysis.Description,
		AnalysisRaw:  string(raw),
	}
	if err := s.store.Create(ctx, report); err != nil {
		return models.Report{}, err
	}

	s.logger.Info("report created", "id", report.ID, "trashType", report.TrashType, "severity", report.Severity)
	return report, nil
}

// Edit applies a partial update to an existing report.
func (s *ReportService) Edit(ctx context.Context, id string, e Edit) (models.Report, error) {
	report, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Report{}, err
	}
	if !ok {
		return models.Report{}, ErrReportNotFound
	}

	if e.LocationName != nil {
		report.LocationName = strings.TrimSpace(*e.LocationName)
	}
	if e.TrashType != nil {
		report.TrashType = *e.TrashType
	}
	if e.Severity != nil {
		report.Severity = *e.Severity
	}
	if e.Description != nil {
		report.Description = strings.TrimSpace(*e.Description)
	}

	if err := s.store.Update(ctx, report); err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func checkAnalysis(a models.Analysis) error {
	if !a.IsGarbage {
		return classifier.ErrNotGarbage
	}
	if !a.Usable() {
		return fmt.Errorf("%w: unrecognized trash type %q or severity %q", ErrClassificationFailed, a.TrashType, a.Severity)
	}
	return nil
}
