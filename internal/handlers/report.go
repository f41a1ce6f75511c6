package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/services"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type ReportHandler struct {
	log           *logger.Logger
	reportService services.ReportService
}

func NewReportHandler(log *logger.Logger, reportService services.ReportService) *ReportHandler {
	return &ReportHandler{
		log:           log.With("handler", "ReportHandler"),
		reportService: reportService,
	}
}

// Generate runs (or refreshes) aggregation for an assignment.
func (h *ReportHandler) Generate(c *gin.Context) {
	assignmentID, ok := h.assignmentID(c)
	if !ok {
		return
	}
	doc, err := h.reportService.GenerateReport(c.Request.Context(), nil, assignmentID)
	if err != nil {
		h.respondReportError(c, "generate_report_failed", err, assignmentID)
		return
	}
	RespondOK(c, displayDocument(doc))
}

// Get returns the persisted report document, generating it on first read.
func (h *ReportHandler) Get(c *gin.Context) {
	assignmentID, ok := h.assignmentID(c)
	if !ok {
		return
	}
	doc, err := h.reportService.GetReport(c.Request.Context(), nil, assignmentID)
	if err != nil {
		h.respondReportError(c, "load_report_failed", err, assignmentID)
		return
	}
	RespondOK(c, displayDocument(doc))
}

// QueueRender flips the report's render status to queued. Passing
// new_version=true allocates a fresh artifact version; the default re-queue
// overwrites the current one.
func (h *ReportHandler) QueueRender(c *gin.Context) {
	assignmentID, ok := h.assignmentID(c)
	if !ok {
		return
	}
	newVersion := c.Query("new_version") == "true"
	rep, err := h.reportService.QueueRender(c.Request.Context(), nil, assignmentID, newVersion)
	if err != nil {
		h.respondReportError(c, "queue_render_failed", err, assignmentID)
		return
	}
	RespondOK(c, renderStatusPayload(rep))
}

// RenderStatus returns the pdf_* sub-document of the report row.
func (h *ReportHandler) RenderStatus(c *gin.Context) {
	assignmentID, ok := h.assignmentID(c)
	if !ok {
		return
	}
	rep, err := h.reportService.RenderStatus(c.Request.Context(), nil, assignmentID)
	if err != nil {
		h.respondReportError(c, "render_status_failed", err, assignmentID)
		return
	}
	RespondOK(c, renderStatusPayload(rep))
}

// View serves the document consumed by the print page the render worker
// navigates to. The service-token middleware has already authenticated the
// request and pinned the assignment id.
func (h *ReportHandler) View(c *gin.Context) {
	assignmentID, ok := h.assignmentID(c)
	if !ok {
		return
	}
	doc, err := h.reportService.GetReport(c.Request.Context(), nil, assignmentID)
	if err != nil {
		h.respondReportError(c, "load_report_failed", err, assignmentID)
		return
	}
	RespondOK(c, displayDocument(doc))
}

func (h *ReportHandler) assignmentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("assignmentID"))
	if err != nil || id == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "invalid_assignment_id", errors.New("invalid assignment id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *ReportHandler) respondReportError(c *gin.Context, code string, err error, assignmentID uuid.UUID) {
	if errors.Is(err, services.ErrAssignmentNotFound) {
		RespondError(c, http.StatusNotFound, "assignment_not_found", err)
		return
	}
	h.log.Error("Report request failed", "code", code, "error", err, "assignment_id", assignmentID)
	RespondError(c, http.StatusInternalServerError, code, err)
}

// displayDocument applies display-side rounding: stored values stay full
// precision, view payloads show two decimals.
func displayDocument(doc *types.ReportDocument) *types.ReportDocument {
	out := *doc
	out.OverallScore = types.Round2(doc.OverallScore)
	out.Dimensions = make([]types.DimensionSection, len(doc.Dimensions))
	for i, d := range doc.Dimensions {
		d.OverallScore = types.Round2(d.OverallScore)
		d.RaterBreakdown = roundBreakdown(d.RaterBreakdown)
		if d.Geonorm != nil {
			v := types.Round2(*d.Geonorm)
			d.Geonorm = &v
		}
		out.Dimensions[i] = d
	}
	return &out
}

func roundBreakdown(rb types.RaterBreakdown) types.RaterBreakdown {
	round := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := types.Round2(*p)
		return &v
	}
	return types.RaterBreakdown{
		AllRaters:    round(rb.AllRaters),
		Peer:         round(rb.Peer),
		DirectReport: round(rb.DirectReport),
		Supervisor:   round(rb.Supervisor),
		Self:         round(rb.Self),
		Other:        round(rb.Other),
	}
}

func renderStatusPayload(rep *types.Report) gin.H {
	return gin.H{
		"assignment_id":    rep.AssignmentID,
		"pdf_status":       rep.PDFStatus,
		"pdf_storage_path": rep.PDFStoragePath,
		"pdf_version":      rep.PDFVersion,
		"pdf_generated_at": rep.PDFGeneratedAt,
		"pdf_last_error":   rep.PDFLastError,
	}
}
