package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type DimensionScoreRepo interface {
	ListByAssignments(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.DimensionScore, error)
}

type dimensionScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDimensionScoreRepo(db *gorm.DB, baseLog *logger.Logger) DimensionScoreRepo {
	return &dimensionScoreRepo{
		db:  db,
		log: baseLog.With("repo", "DimensionScoreRepo"),
	}
}

func (r *dimensionScoreRepo) ListByAssignments(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.DimensionScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DimensionScore
	if len(assignmentIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assignment_id IN ?", assignmentIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
