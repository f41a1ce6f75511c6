package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/services"
	"github.com/talentpulse/assessment-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

// ---- fakes -----------------------------------------------------------------

type fakeReportRepo struct {
	mu    sync.Mutex
	queue []*types.Report

	claims      int
	readyPath   string
	readyVer    int
	failedMsg   string
	readyCalls  int
	failedCalls int
}

func (f *fakeReportRepo) GetByAssignmentID(_ context.Context, _ *gorm.DB, _ uuid.UUID) (*types.Report, error) {
	return nil, nil
}

func (f *fakeReportRepo) UpsertScores(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ float64, _ bool, _ datatypes.JSON) (*types.Report, error) {
	return nil, nil
}

func (f *fakeReportRepo) QueueRender(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ bool) (*types.Report, error) {
	return nil, nil
}

func (f *fakeReportRepo) ClaimNextQueued(_ context.Context, _ *gorm.DB) (*types.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims++
	if len(f.queue) == 0 {
		return nil, nil
	}
	job := f.queue[0]
	f.queue = f.queue[1:]
	job.PDFStatus = types.PDFStatusGenerating
	return job, nil
}

func (f *fakeReportRepo) MarkReady(_ context.Context, _ *gorm.DB, _ uuid.UUID, storagePath string, version int, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readyCalls++
	f.readyPath = storagePath
	f.readyVer = version
	return nil
}

func (f *fakeReportRepo) MarkFailed(_ context.Context, _ *gorm.DB, _ uuid.UUID, renderErr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedCalls++
	f.failedMsg = renderErr
	return nil
}

func (f *fakeReportRepo) snapshot() fakeReportRepo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fakeReportRepo{
		claims:      f.claims,
		readyPath:   f.readyPath,
		readyVer:    f.readyVer,
		failedMsg:   f.failedMsg,
		readyCalls:  f.readyCalls,
		failedCalls: f.failedCalls,
	}
}

type fakeRenderer struct {
	pdf      []byte
	err      error
	panicMsg string
	lastURL  string
}

func (f *fakeRenderer) Render(_ context.Context, url string) ([]byte, error) {
	f.lastURL = url
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.pdf, f.err
}

type fakeBucket struct {
	uploads map[string][]byte
	err     error
}

func (f *fakeBucket) UploadPDF(_ context.Context, key string, pdf io.Reader) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(pdf)
	if err != nil {
		return err
	}
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = data
	return nil
}

func (f *fakeBucket) DeleteFile(_ context.Context, _ string) error { return nil }

func (f *fakeBucket) GetPublicURL(key string) string { return "https://cdn.test/" + key }

type fakeTokens struct{}

func (fakeTokens) Issue(assignmentID uuid.UUID) (string, error) {
	return "token-" + assignmentID.String(), nil
}

func (fakeTokens) Validate(_ string) (uuid.UUID, error) { return uuid.Nil, nil }

// ---- tests ----------------------------------------------------------------

func newTestWorker(t *testing.T, repo *fakeReportRepo, renderer *fakeRenderer, bucket services.BucketService) *Worker {
	t.Helper()
	return NewWorker(nil, testLogger(t), repo, renderer, bucket, fakeTokens{}, "http://app.test", 5*time.Millisecond)
}

func queuedJob(version int) *types.Report {
	return &types.Report{
		ID:           uuid.New(),
		AssignmentID: uuid.New(),
		PDFStatus:    types.PDFStatusQueued,
		PDFVersion:   version,
	}
}

func TestProcessSuccess(t *testing.T) {
	repo := &fakeReportRepo{}
	renderer := &fakeRenderer{pdf: []byte("%PDF-1.7 test")}
	bucket := &fakeBucket{}
	w := newTestWorker(t, repo, renderer, bucket)

	job := queuedJob(2)
	w.process(context.Background(), job)

	s := repo.snapshot()
	if s.readyCalls != 1 || s.failedCalls != 0 {
		t.Fatalf("ready=%d failed=%d, want exactly one ready", s.readyCalls, s.failedCalls)
	}
	wantKey := types.ArtifactKey(job.AssignmentID, 2)
	if s.readyPath != wantKey || s.readyVer != 2 {
		t.Fatalf("marked ready with path=%q ver=%d, want %q ver=2", s.readyPath, s.readyVer, wantKey)
	}
	if got := bucket.uploads[wantKey]; string(got) != "%PDF-1.7 test" {
		t.Fatalf("artifact not uploaded under %q", wantKey)
	}
	if !strings.Contains(renderer.lastURL, "/reports/"+job.AssignmentID.String()+"/view") {
		t.Fatalf("renderer navigated to %q", renderer.lastURL)
	}
	if !strings.Contains(renderer.lastURL, "service_role_token=") {
		t.Fatalf("view URL must carry the service role token: %q", renderer.lastURL)
	}
}

func TestProcessZeroVersionRendersAsV1(t *testing.T) {
	repo := &fakeReportRepo{}
	w := newTestWorker(t, repo, &fakeRenderer{pdf: []byte("x")}, &fakeBucket{})

	job := queuedJob(0)
	w.process(context.Background(), job)

	s := repo.snapshot()
	if s.readyVer != 1 {
		t.Fatalf("legacy rows without a version render as v1, got %d", s.readyVer)
	}
	if want := types.ArtifactKey(job.AssignmentID, 1); s.readyPath != want {
		t.Fatalf("path = %q, want %q", s.readyPath, want)
	}
}

func TestProcessRenderFailure(t *testing.T) {
	repo := &fakeReportRepo{}
	bucket := &fakeBucket{}
	w := newTestWorker(t, repo, &fakeRenderer{err: errors.New("no report sections rendered")}, bucket)

	w.process(context.Background(), queuedJob(1))

	s := repo.snapshot()
	if s.failedCalls != 1 || s.readyCalls != 0 {
		t.Fatalf("ready=%d failed=%d, want exactly one failure", s.readyCalls, s.failedCalls)
	}
	if !strings.Contains(s.failedMsg, "no report sections rendered") {
		t.Fatalf("failure message lost: %q", s.failedMsg)
	}
	if len(bucket.uploads) != 0 {
		t.Fatalf("failed render must not upload anything")
	}
}

func TestProcessUploadFailure(t *testing.T) {
	repo := &fakeReportRepo{}
	w := newTestWorker(t, repo, &fakeRenderer{pdf: []byte("x")}, &fakeBucket{err: errors.New("bucket unavailable")})

	w.process(context.Background(), queuedJob(1))

	s := repo.snapshot()
	if s.failedCalls != 1 || s.readyCalls != 0 {
		t.Fatalf("upload failure must mark the job failed, ready=%d failed=%d", s.readyCalls, s.failedCalls)
	}
	if !strings.Contains(s.failedMsg, "bucket unavailable") {
		t.Fatalf("failure message lost: %q", s.failedMsg)
	}
}

func TestProcessRecoversFromPanic(t *testing.T) {
	repo := &fakeReportRepo{}
	w := newTestWorker(t, repo, &fakeRenderer{panicMsg: "browser crashed"}, &fakeBucket{})

	w.process(context.Background(), queuedJob(1))

	s := repo.snapshot()
	if s.failedCalls != 1 {
		t.Fatalf("a renderer panic must land in MarkFailed, failed=%d", s.failedCalls)
	}
	if !strings.Contains(s.failedMsg, "browser crashed") {
		t.Fatalf("panic message lost: %q", s.failedMsg)
	}
}

func TestRunLoopDrainsQueueAndSurvivesFailures(t *testing.T) {
	good := queuedJob(1)
	bad := queuedJob(1)
	repo := &fakeReportRepo{queue: []*types.Report{bad, good}}
	renderer := &fakeRenderer{pdf: []byte("x")}
	// The first job fails at upload; the loop must keep going and finish
	// the second.
	bucket := &failOnceBucket{}
	w := newTestWorker(t, repo, renderer, bucket)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		s := repo.snapshot()
		if s.readyCalls >= 1 && s.failedCalls >= 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("loop did not drain queue: ready=%d failed=%d", s.readyCalls, s.failedCalls)
		case <-time.After(5 * time.Millisecond):
		}
	}

	if want := types.ArtifactKey(good.AssignmentID, 1); repo.snapshot().readyPath != want {
		t.Fatalf("surviving job path = %q, want %q", repo.snapshot().readyPath, want)
	}
}

type failOnceBucket struct {
	fakeBucket
	mu    sync.Mutex
	calls int
}

func (f *failOnceBucket) UploadPDF(ctx context.Context, key string, pdf io.Reader) error {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()
	if first {
		return fmt.Errorf("transient storage error")
	}
	return f.fakeBucket.UploadPDF(ctx, key, pdf)
}
