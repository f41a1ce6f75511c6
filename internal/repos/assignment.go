package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type AssignmentRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error)
	// ListCompletedForSubject returns completed assignments rating the given
	// subject on the given assessment, optionally scoped to one rating group.
	ListCompletedForSubject(ctx context.Context, tx *gorm.DB, assessmentID, subjectID uuid.UUID, groupID *uuid.UUID) ([]*types.Assignment, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{
		db:  db,
		log: baseLog.With("repo", "AssignmentRepo"),
	}
}

func (r *assignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var a types.Assignment
	err := transaction.WithContext(ctx).
		Preload("Assessment").
		Preload("Target").
		Preload("User").
		Where("id = ?", id).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListCompletedForSubject(ctx context.Context, tx *gorm.DB, assessmentID, subjectID uuid.UUID, groupID *uuid.UUID) ([]*types.Assignment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Assignment
	if assessmentID == uuid.Nil || subjectID == uuid.Nil {
		return out, nil
	}
	q := transaction.WithContext(ctx).
		Where("assessment_id = ? AND completed = ?", assessmentID, true).
		Where("target_id = ? OR (target_id IS NULL AND user_id = ?)", subjectID, subjectID)
	if groupID != nil && *groupID != uuid.Nil {
		q = q.Where("group_id = ?", *groupID)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
