package services

import (
	"github.com/talentpulse/assessment-backend/internal/types"
)

// SelectFeedback picks the feedback texts for one dimension section from its
// library entries: the overall entry (score-independent, at most one exists
// per dimension) and the first specific entry whose [min, max] range
// contains the score. Entries arrive in stored order (created_at, id), which
// is the deterministic tie-break when several specific ranges match.
func SelectFeedback(entries []*types.FeedbackEntry, score float64) (overall, specific *string) {
	for _, e := range entries {
		if e == nil {
			continue
		}
		switch e.Type {
		case types.FeedbackTypeOverall:
			if overall == nil {
				body := e.Body
				overall = &body
			}
		case types.FeedbackTypeSpecific:
			if specific == nil && e.Matches(score) {
				body := e.Body
				specific = &body
			}
		}
		if overall != nil && specific != nil {
			break
		}
	}
	return overall, specific
}
