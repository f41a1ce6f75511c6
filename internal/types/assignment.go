package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assignment is one administration of an assessment to a user, optionally
// rating a target (360-style) and optionally scoped to a rating group.
// Completed assignments are read-only for scoring purposes.
type Assignment struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AssessmentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"assessment_id"`
	Assessment   *Assessment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssessmentID;references:ID" json:"assessment,omitempty"`
	TargetID     *uuid.UUID     `gorm:"type:uuid;index" json:"target_id,omitempty"`
	Target       *User          `gorm:"constraint:OnDelete:SET NULL;foreignKey:TargetID;references:ID" json:"target,omitempty"`
	GroupID      *uuid.UUID     `gorm:"type:uuid;index" json:"group_id,omitempty"`
	Group        *Group         `gorm:"constraint:OnDelete:SET NULL;foreignKey:GroupID;references:ID" json:"group,omitempty"`
	Completed    bool           `gorm:"not null;default:false;index" json:"completed"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assignment) TableName() string { return "assignment" }

// SubjectID is the user being rated: the target when present, otherwise the
// assignment's own user (self-administered assessments).
func (a *Assignment) SubjectID() uuid.UUID {
	if a.TargetID != nil && *a.TargetID != uuid.Nil {
		return *a.TargetID
	}
	return a.UserID
}
