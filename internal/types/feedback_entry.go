package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	FeedbackTypeOverall  = "overall"
	FeedbackTypeSpecific = "specific"
)

// FeedbackEntry is library text keyed by (assessment, dimension, type) and,
// for specific entries, an optional [MinScore, MaxScore] range. A nil bound
// is unbounded on that side. At most one overall entry exists per
// (assessment, dimension); a partial unique index enforces it (see
// internal/db migrations).
type FeedbackEntry struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment   *Assessment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssessmentID;references:ID" json:"assessment,omitempty"`
	DimensionID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"dimension_id"`
	Dimension    *Dimension     `gorm:"constraint:OnDelete:CASCADE;foreignKey:DimensionID;references:ID" json:"dimension,omitempty"`
	Type         string         `gorm:"not null;index" json:"type"`
	MinScore     *float64       `json:"min_score,omitempty"`
	MaxScore     *float64       `json:"max_score,omitempty"`
	Body         string         `gorm:"not null" json:"body"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (FeedbackEntry) TableName() string { return "feedback_entry" }

// Matches reports whether a specific entry's range contains the score.
// Overall entries match any score.
func (f *FeedbackEntry) Matches(score float64) bool {
	if f.Type == FeedbackTypeOverall {
		return true
	}
	if f.MinScore != nil && score < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && score > *f.MaxScore {
		return false
	}
	return true
}
