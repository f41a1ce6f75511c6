package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DimensionScore is the precomputed average score for one (assignment,
// dimension) pair, the aggregation unit the report engine reads instead of
// raw answers. AvgScore of exactly 0 is a valid low score, not missing data.
type DimensionScore struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssignmentID uuid.UUID      `gorm:"type:uuid;not null;index:idx_dimension_score_pair,unique" json:"assignment_id"`
	Assignment   *Assignment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	DimensionID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_dimension_score_pair,unique" json:"dimension_id"`
	Dimension    *Dimension     `gorm:"constraint:OnDelete:CASCADE;foreignKey:DimensionID;references:ID" json:"dimension,omitempty"`
	AvgScore     float64        `gorm:"not null" json:"avg_score"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DimensionScore) TableName() string { return "dimension_score" }
