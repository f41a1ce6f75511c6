package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Benchmark is an industry-scoped reference value per dimension. Absence is
// non-fatal: reports carry a null industry_benchmark.
type Benchmark struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DimensionID uuid.UUID      `gorm:"type:uuid;not null;index:idx_benchmark_pair,unique" json:"dimension_id"`
	Dimension   *Dimension     `gorm:"constraint:OnDelete:CASCADE;foreignKey:DimensionID;references:ID" json:"dimension,omitempty"`
	Industry    string         `gorm:"not null;index:idx_benchmark_pair,unique" json:"industry"`
	Value       float64        `gorm:"not null" json:"value"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Benchmark) TableName() string { return "benchmark" }
