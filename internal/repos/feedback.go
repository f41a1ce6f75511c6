package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type FeedbackRepo interface {
	// ListByDimension returns all feedback entries for one (assessment,
	// dimension) in stored order. Creation order, id as tie-break, is the
	// documented deterministic rule when several specific ranges match.
	ListByDimension(ctx context.Context, tx *gorm.DB, assessmentID, dimensionID uuid.UUID) ([]*types.FeedbackEntry, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{
		db:  db,
		log: baseLog.With("repo", "FeedbackRepo"),
	}
}

func (r *feedbackRepo) ListByDimension(ctx context.Context, tx *gorm.DB, assessmentID, dimensionID uuid.UUID) ([]*types.FeedbackEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.FeedbackEntry
	if assessmentID == uuid.Nil || dimensionID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assessment_id = ? AND dimension_id = ?", assessmentID, dimensionID).
		Order("created_at ASC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
