package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PDFStatus is the render job state for a report. The status column is both
// the queue and the lock: the API writes queued, the render worker moves a
// claimed row through generating into ready or failed. Transitions are
// guarded; re-queueing is the one externally driven re-entry and is legal
// from any state.
type PDFStatus string

const (
	// PDFStatusNone is the zero value before a render was ever requested.
	PDFStatusNone       PDFStatus = ""
	PDFStatusQueued     PDFStatus = "queued"
	PDFStatusGenerating PDFStatus = "generating"
	PDFStatusReady      PDFStatus = "ready"
	PDFStatusFailed     PDFStatus = "failed"
)

func (s PDFStatus) Valid() bool {
	switch s {
	case PDFStatusNone, PDFStatusQueued, PDFStatusGenerating, PDFStatusReady, PDFStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether the worker is done with the job. Ready and failed
// rows stay put until an external actor re-queues them.
func (s PDFStatus) Terminal() bool {
	return s == PDFStatusReady || s == PDFStatusFailed
}

func (s PDFStatus) CanTransitionTo(next PDFStatus) bool {
	if next == PDFStatusQueued {
		return true
	}
	switch s {
	case PDFStatusQueued:
		return next == PDFStatusGenerating
	case PDFStatusGenerating:
		return next == PDFStatusReady || next == PDFStatusFailed
	}
	return false
}

// Report is the persisted output of aggregation plus render metadata. The
// score fields and the pdf_* fields are logically independent sub-documents
// sharing one row: aggregation upserts never touch pdf_* and the worker
// never touches scores.
type Report struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AssignmentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"assignment_id"`
	Assignment   *Assignment    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	OverallScore float64        `gorm:"not null;default:0" json:"overall_score"`
	Partial      bool           `gorm:"not null;default:false" json:"partial"`
	Document     datatypes.JSON `gorm:"type:jsonb" json:"document"`

	PDFStatus      PDFStatus  `gorm:"column:pdf_status;not null;default:'';index" json:"pdf_status"`
	PDFStoragePath *string    `gorm:"column:pdf_storage_path" json:"pdf_storage_path,omitempty"`
	PDFVersion     int        `gorm:"column:pdf_version;not null;default:0" json:"pdf_version"`
	PDFGeneratedAt *time.Time `gorm:"column:pdf_generated_at" json:"pdf_generated_at,omitempty"`
	PDFLastError   *string    `gorm:"column:pdf_last_error" json:"pdf_last_error,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Report) TableName() string { return "report" }

// ArtifactKey is the storage path for one rendered version:
// "{assignmentID}/v{version}.pdf". Re-renders of the same version overwrite
// the same object.
func ArtifactKey(assignmentID uuid.UUID, version int) string {
	return fmt.Sprintf("%s/v%d.pdf", assignmentID, version)
}
