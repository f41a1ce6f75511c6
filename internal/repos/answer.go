package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type AnswerRepo interface {
	// ListTextByAssignments returns free-text answers (non-empty text_value)
	// across the given assignments, oldest first.
	ListTextByAssignments(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.Answer, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{
		db:  db,
		log: baseLog.With("repo", "AnswerRepo"),
	}
}

func (r *answerRepo) ListTextByAssignments(ctx context.Context, tx *gorm.DB, assignmentIDs []uuid.UUID) ([]*types.Answer, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Answer
	if len(assignmentIDs) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("assignment_id IN ? AND text_value IS NOT NULL AND text_value <> ''", assignmentIDs).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
