package types

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ReportDocument is the fully shaped aggregation output. Consumers (the
// print view, exports) always receive this shape; a partial report is the
// same document with zeroed sections, never a special case.
type ReportDocument struct {
	AssignmentID uuid.UUID  `json:"assignment_id"`
	AssessmentID uuid.UUID  `json:"assessment_id"`
	Assessment   string     `json:"assessment"`
	TargetID     *uuid.UUID `json:"target_id,omitempty"`
	TargetName   string     `json:"target_name,omitempty"`

	OverallScore float64            `json:"overall_score"`
	Partial      bool               `json:"partial"`
	Responses    ResponseSummary    `json:"participant_response_summary"`
	Dimensions   []DimensionSection `json:"dimensions"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

type ResponseSummary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// RaterBreakdown holds per-rater-type means. A nil bucket means no rater of
// that type contributed; 0 is a real score.
type RaterBreakdown struct {
	AllRaters    *float64 `json:"all_raters"`
	Peer         *float64 `json:"peer"`
	DirectReport *float64 `json:"direct_report"`
	Supervisor   *float64 `json:"supervisor"`
	Self         *float64 `json:"self"`
	Other        *float64 `json:"other"`
}

// Bucket returns the breakdown slot for a rater type; unknown types land in
// Other.
func (rb *RaterBreakdown) Bucket(raterType string) **float64 {
	switch raterType {
	case RaterTypePeer:
		return &rb.Peer
	case RaterTypeDirectReport:
		return &rb.DirectReport
	case RaterTypeSupervisor:
		return &rb.Supervisor
	case RaterTypeSelf:
		return &rb.Self
	default:
		return &rb.Other
	}
}

type DimensionSection struct {
	DimensionID uuid.UUID `json:"dimension_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`

	OverallScore      float64        `json:"overall_score"`
	RaterBreakdown    RaterBreakdown `json:"rater_breakdown"`
	IndustryBenchmark *float64       `json:"industry_benchmark"`

	Geonorm                 *float64 `json:"geonorm"`
	GeonormParticipantCount int      `json:"geonorm_participant_count"`

	ImprovementNeeded bool     `json:"improvement_needed"`
	TextFeedback      []string `json:"text_feedback"`
	SpecificFeedback  *string  `json:"specific_feedback"`
	OverallFeedback   *string  `json:"overall_feedback"`
}

// Round2 rounds to two decimals for display. Internal document values stay
// full precision; only view payloads go through this.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
