package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Collaborator-owned identity rows (read-only here)
		// =========================
		&types.User{},

		// =========================
		// Assessment catalog
		// =========================
		&types.Assessment{},
		&types.Dimension{},
		&types.Benchmark{},
		&types.FeedbackEntry{},

		// =========================
		// Distribution + responses
		// =========================
		&types.Group{},
		&types.GroupMember{},
		&types.Assignment{},
		&types.Answer{},
		&types.DimensionScore{},

		// =========================
		// Report output + render queue
		// =========================
		&types.Report{},
	)
}

func EnsureReportIndexes(db *gorm.DB) error {
	// uuid-ossp is already enabled in NewPostgresService, but safe to re-run
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	// Worker polls the oldest queued row.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_report_pdf_status_updated_at
		ON report (pdf_status, updated_at ASC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_report_pdf_status_updated_at: %w", err)
	}

	// At most one overall feedback entry per (assessment, dimension).
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_feedback_entry_overall_unique
		ON feedback_entry (assessment_id, dimension_id)
		WHERE deleted_at IS NULL AND type = 'overall';
	`).Error; err != nil {
		return fmt.Errorf("create idx_feedback_entry_overall_unique: %w", err)
	}

	// Specific entries are selected in stored order.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_feedback_entry_lookup
		ON feedback_entry (assessment_id, dimension_id, type, created_at ASC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_feedback_entry_lookup: %w", err)
	}

	// Peer assignment scans for aggregation.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_assignment_target_completed
		ON assignment (assessment_id, target_id, completed)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_assignment_target_completed: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureReportIndexes(s.db); err != nil {
		s.log.Error("Report index migration failed", "error", err)
		return err
	}
	return nil
}
