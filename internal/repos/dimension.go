package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type DimensionRepo interface {
	// ListRootsByAssessment returns the report-section dimensions: rows with
	// no parent, in stored sort order.
	ListRootsByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.Dimension, error)
	// ListByAssessment returns every dimension of the assessment, roots and
	// children; the engine uses the parent pointers to roll child scores up
	// into their root section.
	ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.Dimension, error)
}

type dimensionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDimensionRepo(db *gorm.DB, baseLog *logger.Logger) DimensionRepo {
	return &dimensionRepo{
		db:  db,
		log: baseLog.With("repo", "DimensionRepo"),
	}
}

func (r *dimensionRepo) ListRootsByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.Dimension, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dimension
	if assessmentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assessment_id = ? AND parent_id IS NULL", assessmentID).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *dimensionRepo) ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uuid.UUID) ([]*types.Dimension, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dimension
	if assessmentID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("sort_order ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
