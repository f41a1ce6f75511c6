package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/services"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type fakeReportService struct {
	doc *types.ReportDocument
	rep *types.Report
	err error
}

func (f *fakeReportService) GenerateReport(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*types.ReportDocument, error) {
	return f.doc, f.err
}

func (f *fakeReportService) GetReport(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*types.ReportDocument, error) {
	return f.doc, f.err
}

func (f *fakeReportService) QueueRender(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ bool) (*types.Report, error) {
	return f.rep, f.err
}

func (f *fakeReportService) RenderStatus(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*types.Report, error) {
	return f.rep, f.err
}

func newHandlerRouter(t *testing.T, svc services.ReportService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	h := NewReportHandler(log, svc)

	router := gin.New()
	router.GET("/api/assignments/:assignmentID/report", h.Get)
	router.GET("/api/assignments/:assignmentID/report/render", h.RenderStatus)
	return router
}

func TestGetReportRoundsForDisplay(t *testing.T) {
	score := 3.666666666
	svc := &fakeReportService{doc: &types.ReportDocument{
		AssignmentID: uuid.New(),
		OverallScore: 1.8333333,
		Dimensions: []types.DimensionSection{{
			DimensionID:  uuid.New(),
			Name:         "Leadership",
			OverallScore: score,
			RaterBreakdown: types.RaterBreakdown{
				AllRaters: &score,
			},
			TextFeedback: []string{},
		}},
	}}
	router := newHandlerRouter(t, svc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assignments/"+uuid.NewString()+"/report", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got types.ReportDocument
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.OverallScore != 1.83 {
		t.Fatalf("overall = %v, want 1.83", got.OverallScore)
	}
	if got.Dimensions[0].OverallScore != 3.67 {
		t.Fatalf("section score = %v, want 3.67", got.Dimensions[0].OverallScore)
	}
	if *got.Dimensions[0].RaterBreakdown.AllRaters != 3.67 {
		t.Fatalf("all_raters = %v, want 3.67", *got.Dimensions[0].RaterBreakdown.AllRaters)
	}
	// The service's copy must keep full precision.
	if svc.doc.Dimensions[0].OverallScore != score {
		t.Fatalf("display rounding mutated the stored document")
	}
}

func TestGetReportNotFound(t *testing.T) {
	router := newHandlerRouter(t, &fakeReportService{err: services.ErrAssignmentNotFound})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assignments/"+uuid.NewString()+"/report", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var envelope ErrorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "assignment_not_found" {
		t.Fatalf("code = %q, want assignment_not_found", envelope.Error.Code)
	}
}

func TestGetReportInvalidID(t *testing.T) {
	router := newHandlerRouter(t, &fakeReportService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assignments/not-a-uuid/report", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRenderStatusPayload(t *testing.T) {
	path := "abc/v2.pdf"
	router := newHandlerRouter(t, &fakeReportService{rep: &types.Report{
		AssignmentID:   uuid.New(),
		PDFStatus:      types.PDFStatusReady,
		PDFStoragePath: &path,
		PDFVersion:     2,
	}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/assignments/"+uuid.NewString()+"/report/render", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["pdf_status"] != "ready" || got["pdf_storage_path"] != path {
		t.Fatalf("payload = %v", got)
	}
	if got["pdf_version"].(float64) != 2 {
		t.Fatalf("pdf_version = %v, want 2", got["pdf_version"])
	}
}
