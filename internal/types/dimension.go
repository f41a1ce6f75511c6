package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dimension is a coded competency axis. Dimensions form a tree via ParentID;
// only root dimensions (parent_id IS NULL) appear as report sections, child
// dimension scores roll up into their root.
type Dimension struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment   *Assessment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssessmentID;references:ID" json:"assessment,omitempty"`
	ParentID     *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Parent       *Dimension     `gorm:"constraint:OnDelete:SET NULL;foreignKey:ParentID;references:ID" json:"parent,omitempty"`
	Name         string         `gorm:"not null" json:"name"`
	Code         string         `gorm:"not null;index" json:"code"`
	Description  string         `json:"description,omitempty"`
	SortOrder    int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Dimension) TableName() string { return "dimension" }
