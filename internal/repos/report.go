package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type ReportRepo interface {
	GetByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Report, error)

	// UpsertScores writes the aggregation sub-document (scores + document)
	// without touching any pdf_* field. Idempotent per assignment.
	UpsertScores(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, overallScore float64, partial bool, document datatypes.JSON) (*types.Report, error)

	// QueueRender flips the row to queued. Legal from any state (external
	// re-entry). A plain re-queue keeps pdf_version so the same artifact path
	// is overwritten; newVersion requests a bump.
	QueueRender(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, newVersion bool) (*types.Report, error)

	// ClaimNextQueued atomically moves the oldest queued row to generating.
	// The claim is a conditional update guarded on pdf_status = 'queued'
	// inside one transaction with a SKIP LOCKED select; zero rows affected
	// means another worker won the row and nil is returned.
	ClaimNextQueued(ctx context.Context, tx *gorm.DB) (*types.Report, error)

	// MarkReady and MarkFailed are guarded on pdf_status = 'generating' so a
	// concurrent external re-queue is never clobbered by a stale worker.
	MarkReady(ctx context.Context, tx *gorm.DB, id uuid.UUID, storagePath string, version int, generatedAt time.Time) error
	MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, renderErr string) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{
		db:  db,
		log: baseLog.With("repo", "ReportRepo"),
	}
}

func (r *reportRepo) GetByAssignmentID(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if assignmentID == uuid.Nil {
		return nil, nil
	}
	var rep types.Report
	err := transaction.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reportRepo) UpsertScores(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, overallScore float64, partial bool, document datatypes.JSON) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if assignmentID == uuid.Nil {
		return nil, fmt.Errorf("missing assignment id")
	}
	rep := &types.Report{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		OverallScore: overallScore,
		Partial:      partial,
		Document:     document,
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"overall_score": overallScore,
				"partial":       partial,
				"document":      document,
				"updated_at":    time.Now(),
			}),
		}).
		Create(rep).Error
	if err != nil {
		return nil, err
	}
	return r.GetByAssignmentID(ctx, transaction, assignmentID)
}

func (r *reportRepo) QueueRender(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, newVersion bool) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	rep, err := r.GetByAssignmentID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, fmt.Errorf("report not found for assignment %s", assignmentID)
	}
	version := rep.PDFVersion
	if version < 1 {
		version = 1
	} else if newVersion {
		version++
	}
	now := time.Now()
	updates := map[string]interface{}{
		"pdf_status":  types.PDFStatusQueued,
		"pdf_version": version,
		"updated_at":  now,
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Report{}).
		Where("id = ?", rep.ID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	rep.PDFStatus = types.PDFStatusQueued
	rep.PDFVersion = version
	rep.UpdatedAt = now
	return rep, nil
}

func (r *reportRepo) ClaimNextQueued(ctx context.Context, tx *gorm.DB) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	var claimed *types.Report
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var rep types.Report
		q := txx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("pdf_status = ?", types.PDFStatusQueued).
			Order("updated_at ASC")
		qErr := q.First(&rep).Error
		if errors.Is(qErr, gorm.ErrRecordNotFound) {
			return nil
		}
		if qErr != nil {
			return qErr
		}
		res := txx.Model(&types.Report{}).
			Where("id = ? AND pdf_status = ?", rep.ID, types.PDFStatusQueued).
			Updates(map[string]interface{}{
				"pdf_status": types.PDFStatusGenerating,
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to another claimer; treat as nothing to do.
			return nil
		}
		rep.PDFStatus = types.PDFStatusGenerating
		rep.UpdatedAt = now
		claimed = &rep
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *reportRepo) MarkReady(ctx context.Context, tx *gorm.DB, id uuid.UUID, storagePath string, version int, generatedAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	res := transaction.WithContext(ctx).
		Model(&types.Report{}).
		Where("id = ? AND pdf_status = ?", id, types.PDFStatusGenerating).
		Updates(map[string]interface{}{
			"pdf_status":       types.PDFStatusReady,
			"pdf_storage_path": storagePath,
			"pdf_version":      version,
			"pdf_generated_at": generatedAt,
			"pdf_last_error":   nil,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report %s no longer generating, ready transition rejected", id)
	}
	return nil
}

func (r *reportRepo) MarkFailed(ctx context.Context, tx *gorm.DB, id uuid.UUID, renderErr string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	res := transaction.WithContext(ctx).
		Model(&types.Report{}).
		Where("id = ? AND pdf_status = ?", id, types.PDFStatusGenerating).
		Updates(map[string]interface{}{
			"pdf_status":     types.PDFStatusFailed,
			"pdf_last_error": renderErr,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("report %s no longer generating, failed transition rejected", id)
	}
	return nil
}
