package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rater types relative to the rated subject.
const (
	RaterTypePeer         = "peer"
	RaterTypeDirectReport = "direct_report"
	RaterTypeSupervisor   = "supervisor"
	RaterTypeSelf         = "self"
	RaterTypeOther        = "other"
)

// Group is a rating group for one subject: the set of people invited to rate
// a target user on one assessment.
type Group struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string         `json:"name,omitempty"`
	TargetID  *uuid.UUID     `gorm:"type:uuid;index" json:"target_id,omitempty"`
	Target    *User          `gorm:"constraint:OnDelete:SET NULL;foreignKey:TargetID;references:ID" json:"target,omitempty"`
	Members   []GroupMember  `gorm:"foreignKey:GroupID;references:ID" json:"members,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Group) TableName() string { return "rating_group" }

// GroupMember carries the role used to classify a rater's answers
// (peer, direct_report, supervisor, other). Self is derived, not stored: a
// rater who is the subject rates as self regardless of membership role.
type GroupMember struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GroupID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Role      string         `gorm:"not null;default:'peer'" json:"role"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GroupMember) TableName() string { return "rating_group_member" }
