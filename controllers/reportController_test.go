package controllers

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"prakriti-darpan/kv"
	"prakriti-darpan/logging"
	"prakriti-darpan/models"
	"prakriti-darpan/services"
	"prakriti-darpan/store"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type stubClassifier struct {
	analysis models.Analysis
	err      error
}

func (s stubClassifier) Classify(context.Context, []byte, string) (models.Analysis, error) {
	return s.analysis, s.err
}

var litter = models.Analysis{
	IsGarbage:             true,
	TrashType:             models.Electronic,
	Severity:              models.Medium,
	Description:           "An old monitor on the pavement.",
	SuggestedLocationType: "Street",
}

type testServer struct {
	router  *gin.Engine
	store   *store.Store
	mem     *kv.Memory
	reports *ReportController
}

func newTestServer(t *testing.T, c stubClassifier) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := kv.NewMemory(0)
	st := store.New(store.NewLocalStore(mem, logging.Discard()), store.ModeLocal,
		store.WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))
	logger := logging.Discard()

	rc := NewReportController(st, services.NewReportService(st, c, logger), logger)
	ac := NewAnalyticsController(st, services.NewAnalyticsService(), logger)

	r := gin.New()
	r.POST("/api/analyze", rc.AnalyzeImage)
	r.GET("/api/reports", rc.GetAllReports)
	r.POST("/api/reports", rc.CreateReport)
	r.DELETE("/api/reports", rc.ClearReports)
	r.POST("/api/reports/seed", rc.SeedReports)
	r.GET("/api/reports/:id", rc.GetReport)
	r.PUT("/api/reports/:id", rc.UpdateReport)
	r.DELETE("/api/reports/:id", rc.DeleteReport)
	r.GET("/api/analytics", ac.GetReportAnalytics)

	return &testServer{router: r, store: st, mem: mem, reports: rc}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestAnalyzeImage(t *testing.T) {
	s := newTestServer(t, stubClassifier{analysis: litter})

	w := s.do(t, http.MethodPost, "/api/analyze", gin.H{"image": "data:image/png;base64," + pixelPNG})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, litter, decode[models.Analysis](t, w))

	reports, _ := s.store.List(context.Background())
	assert.Empty(t, reports, "analyze never stores")
}

func TestAnalyzeImage_Errors(t *testing.T) {
	notLitter := litter
	notLitter.IsGarbage = false

	tests := []struct {
		name string
		c    stubClassifier
		body any
		want int
	}{
		{"missing image", stubClassifier{analysis: litter}, gin.H{}, http.StatusBadRequest},
		{"not an image", stubClassifier{analysis: litter}, gin.H{"image": base64.StdEncoding.EncodeToString([]byte("hello"))}, http.StatusBadRequest},
		{"no garbage", stubClassifier{analysis: notLitter}, gin.H{"image": pixelPNG}, http.StatusUnprocessableEntity},
		{"upstream failure", stubClassifier{err: errors.New("deadline exceeded")}, gin.H{"image": pixelPNG}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.c)
			w := s.do(t, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestCreateAndGetReport(t *testing.T) {
	s := newTestServer(t, stubClassifier{analysis: litter})

	w := s.do(t, http.MethodPost, "/api/reports", gin.H{
		"image":        pixelPNG,
		"locationName": "Lanka Gate",
		"latitude":     25.27,
		"longitude":    82.99,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Report](t, w)
	assert.Equal(t, "Lanka Gate", created.LocationName)
	assert.Equal(t, models.Electronic, created.TrashType)
	assert.Equal(t, "data:image/png;base64,"+pixelPNG, created.ImageURL)

	w = s.do(t, http.MethodGet, "/api/reports/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[models.Report](t, w))

	w = s.do(t, http.MethodGet, "/api/reports/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReport_InvalidCoordinates(t *testing.T) {
	s := newTestServer(t, stubClassifier{analysis: litter})

	w := s.do(t, http.MethodPost, "/api/reports", gin.H{"image": pixelPNG, "latitude": 123.0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReport_StorageExhausted(t *testing.T) {
	s := newTestServer(t, stubClassifier{analysis: litter})
	s.mem.SetQuota(int64(len(store.StorageKey) + 10))

	w := s.do(t, http.MethodPost, "/api/reports", gin.H{"image": pixelPNG})
	assert.Equal(t, http.StatusInsufficientStorage, w.Code)
}

func TestCreateReport_SuppliedAnalysis(t *testing.T) {
	s := newTestServer(t, stubClassifier{err: errors.New("classifier must not be called")})

	var carried []bool
	s.router.POST("/api/guarded", func(c *gin.Context) {
		carried = append(carried, CarriesAnalysis(c))
		c.Next()
	}, s.reports.CreateReport)

	w := s.do(t, http.MethodPost, "/api/guarded", gin.H{
		"image":    pixelPNG,
		"analysis": gin.H{"isGarbage": true, "trashType": "Metal", "severity": "High", "description": "Rusted cans."},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, models.Metal, decode[models.Report](t, w).TrashType)

	w = s.do(t, http.MethodPost, "/api/guarded", gin.H{
		"image":    pixelPNG,
		"analysis": gin.H{"isGarbage": false, "trashType": "Metal", "severity": "High"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// without an analysis the classifier runs
	w = s.do(t, http.MethodPost, "/api/guarded", gin.H{"image": pixelPNG})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	assert.Equal(t, []bool{true, true, false}, carried)
	reports, _ := s.store.List(context.Background())
	assert.Len(t, reports, 1)
}

type listResponse struct {
	Reports      []models.Report `json:"reports"`
	TotalReports int             `json:"totalReports"`
	TotalPages   int             `json:"totalPages"`
	CurrentPage  int             `json:"currentPage"`
}

func TestGetAllReports_FiltersAndPages(t *testing.T) {
	s := newTestServer(t, stubClassifier{})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/reports/seed", nil).Code)

	w := s.do(t, http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[listResponse](t, w)
	assert.Equal(t, 3, all.TotalReports)
	require.Len(t, all.Reports, 3)
	assert.Equal(t, "3", all.Reports[0].ID)

	w = s.do(t, http.MethodGet, "/api/reports?trashType=Plastic", nil)
	plastic := decode[listResponse](t, w)
	require.Len(t, plastic.Reports, 1)
	assert.Equal(t, "1", plastic.Reports[0].ID)

	w = s.do(t, http.MethodGet, "/api/reports?search=godowlia", nil)
	assert.Equal(t, 1, decode[listResponse](t, w).TotalReports)

	w = s.do(t, http.MethodGet, "/api/reports?limit=2&page=2", nil)
	paged := decode[listResponse](t, w)
	assert.Equal(t, 2, paged.TotalPages)
	require.Len(t, paged.Reports, 1)
	assert.Equal(t, "1", paged.Reports[0].ID)

	w = s.do(t, http.MethodGet, "/api/reports?severity=Apocalyptic", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReport(t *testing.T) {
	s := newTestServer(t, stubClassifier{})
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/reports/seed", nil).Code)

	w := s.do(t, http.MethodPut, "/api/reports/2", gin.H{"severity": "Critical", "trashType": "Large Item"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[models.Report](t, w)
	assert.Equal(t, models.Critical, updated.Severity)
	assert.Equal(t, models.LargeItem, updated.TrashType)
	assert.Equal(t, "Godowlia Market", updated.LocationName)

	w = s.do(t, http.MethodPut, "/api/reports/2", gin.H{"severity": "Apocalyptic"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/reports/404", gin.H{"description": "gone"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAndClearReports(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(t, stubClassifier{})
	require.NoError(t, s.store.SeedIfEmpty(ctx))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/reports/2", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/reports/2", nil).Code)
	reports, _ := s.store.List(ctx)
	assert.Len(t, reports, 2)

	w := s.do(t, http.MethodDelete, "/api/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mode":"local"`)
	reports, _ = s.store.List(ctx)
	assert.Empty(t, reports)
}

func TestGetReportAnalytics(t *testing.T) {
	s := newTestServer(t, stubClassifier{})
	require.NoError(t, s.store.SeedIfEmpty(context.Background()))

	w := s.do(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Analytics](t, w)
	assert.Equal(t, 3, got.TotalReports)
	assert.Equal(t, 1, got.HighOrCriticalCount)
	assert.Equal(t, 2, got.UniqueAreas)
	assert.Equal(t, "Beniya Bagh Park", got.TopArea)
	assert.Len(t, got.Last7Days, 7)
}
