package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Answer is one respondent's raw response to one question within one
// assignment. Numeric answers feed DimensionScore precomputation upstream;
// text answers surface verbatim in the report's text_feedback.
type Answer struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssignmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment   *Assignment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	DimensionID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"dimension_id"`
	Dimension    *Dimension     `gorm:"constraint:OnDelete:CASCADE;foreignKey:DimensionID;references:ID" json:"dimension,omitempty"`
	RaterUserID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"rater_user_id"`
	Question     string         `gorm:"not null" json:"question"`
	Value        *float64       `json:"value,omitempty"`
	TextValue    *string        `json:"text_value,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Answer) TableName() string { return "answer" }
