package render

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/repos"
	"github.com/talentpulse/assessment-backend/internal/services"
	"github.com/talentpulse/assessment-backend/internal/types"
)

const DefaultPollInterval = 5 * time.Second

// Worker is the render consumer: a single polling loop that claims queued
// report rows, drives the headless renderer, uploads the artifact, and
// records the outcome. One job in flight at a time: the renderer blocks for
// tens of seconds and dominates latency, so serial processing keeps the
// loop simple. Failures stay on the row; the loop never dies with a job.
type Worker struct {
	db       *gorm.DB
	log      *logger.Logger
	reports  repos.ReportRepo
	renderer Renderer
	bucket   services.BucketService
	tokens   services.ViewTokenService

	appBaseURL   string
	pollInterval time.Duration
}

func NewWorker(db *gorm.DB, baseLog *logger.Logger, reports repos.ReportRepo, renderer Renderer, bucket services.BucketService, tokens services.ViewTokenService, appBaseURL string, pollInterval time.Duration) *Worker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Worker{
		db:           db,
		log:          baseLog.With("component", "RenderWorker"),
		reports:      reports,
		renderer:     renderer,
		bucket:       bucket,
		tokens:       tokens,
		appBaseURL:   appBaseURL,
		pollInterval: pollInterval,
	}
}

func (w *Worker) Start(ctx context.Context) {
	w.log.Info("Starting render worker", "poll_interval", w.pollInterval.String())
	go w.runLoop(ctx)
}

func (w *Worker) runLoop(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Render worker stopped")
			return
		case <-ticker.C:
			job, err := w.reports.ClaimNextQueued(ctx, w.db)
			if err != nil {
				w.log.Warn("ClaimNextQueued failed", "error", err)
				continue
			}
			if job == nil {
				continue
			}
			w.process(ctx, job)
		}
	}
}

// process runs one claimed job to ready or failed. Any error, including a
// panic out of the renderer, lands in pdf_last_error; there is no automatic
// retry, re-queueing is an external action.
func (w *Worker) process(ctx context.Context, job *types.Report) {
	log := w.log.With("report_id", job.ID, "assignment_id", job.AssignmentID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("Render panic", "panic", r)
			w.fail(ctx, job, fmt.Sprintf("panic: %v", r))
		}
	}()

	version := job.PDFVersion
	if version < 1 {
		version = 1
	}

	url, err := w.viewURL(job)
	if err != nil {
		log.Error("View URL build failed", "error", err)
		w.fail(ctx, job, err.Error())
		return
	}

	pdf, err := w.renderer.Render(ctx, url)
	if err != nil {
		log.Error("Render failed", "error", err)
		w.fail(ctx, job, err.Error())
		return
	}

	key := types.ArtifactKey(job.AssignmentID, version)
	if err := w.bucket.UploadPDF(ctx, key, bytes.NewReader(pdf)); err != nil {
		log.Error("Artifact upload failed", "error", err, "key", key)
		w.fail(ctx, job, err.Error())
		return
	}

	generatedAt := time.Now()
	if err := w.reports.MarkReady(ctx, w.db, job.ID, key, version, generatedAt); err != nil {
		log.Error("MarkReady failed", "error", err)
		return
	}
	log.Info("Render complete",
		"key", key,
		"version", version,
		"bytes", len(pdf),
		"duration", time.Since(start).String(),
	)
}

func (w *Worker) fail(ctx context.Context, job *types.Report, msg string) {
	if err := w.reports.MarkFailed(ctx, w.db, job.ID, msg); err != nil {
		w.log.Error("MarkFailed failed", "error", err, "report_id", job.ID)
	}
}

// viewURL builds the signed report view URL the renderer navigates to. The
// service-role token rides as a query parameter because the headless browser
// carries no cookies or session.
func (w *Worker) viewURL(job *types.Report) (string, error) {
	token, err := w.tokens.Issue(job.AssignmentID)
	if err != nil {
		return "", fmt.Errorf("issue view token: %w", err)
	}
	return fmt.Sprintf("%s/reports/%s/view?service_role_token=%s", w.appBaseURL, job.AssignmentID, token), nil
}
