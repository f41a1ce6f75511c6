package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/types"
)

type BenchmarkRepo interface {
	GetByDimensionAndIndustry(ctx context.Context, tx *gorm.DB, dimensionID uuid.UUID, industry string) (*types.Benchmark, error)
}

type benchmarkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBenchmarkRepo(db *gorm.DB, baseLog *logger.Logger) BenchmarkRepo {
	return &benchmarkRepo{
		db:  db,
		log: baseLog.With("repo", "BenchmarkRepo"),
	}
}

func (r *benchmarkRepo) GetByDimensionAndIndustry(ctx context.Context, tx *gorm.DB, dimensionID uuid.UUID, industry string) (*types.Benchmark, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if dimensionID == uuid.Nil || industry == "" {
		return nil, nil
	}
	var b types.Benchmark
	err := transaction.WithContext(ctx).
		Where("dimension_id = ? AND industry = ?", dimensionID, industry).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
