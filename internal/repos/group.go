package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type GroupRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error)
	// GetByTarget finds the rating group for a target user when the
	// assignment itself carries no group link (early data lacks it).
	GetByTarget(ctx context.Context, tx *gorm.DB, targetID uuid.UUID) (*types.Group, error)
	ListMembers(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.GroupMember, error)
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{
		db:  db,
		log: baseLog.With("repo", "GroupRepo"),
	}
}

func (r *groupRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var g types.Group
	err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) GetByTarget(ctx context.Context, tx *gorm.DB, targetID uuid.UUID) (*types.Group, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if targetID == uuid.Nil {
		return nil, nil
	}
	var g types.Group
	err := transaction.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at ASC").
		First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) ListMembers(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.GroupMember, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.GroupMember
	if groupID == uuid.Nil {
		return out, nil
	}
	if err := transaction.WithContext(ctx).
		Where("group_id = ?", groupID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
