package services

import (
	"testing"

	"github.com/talentpulse/assessment-backend/internal/types"
)

func entry(kind, body string, min, max *float64) *types.FeedbackEntry {
	return &types.FeedbackEntry{Type: kind, Body: body, MinScore: min, MaxScore: max}
}

func TestSelectFeedback(t *testing.T) {
	low := entry(types.FeedbackTypeSpecific, "low", nil, ptr(2.5))
	mid := entry(types.FeedbackTypeSpecific, "mid", ptr(2.0), ptr(4.0))
	high := entry(types.FeedbackTypeSpecific, "high", ptr(4.0), nil)
	overall := entry(types.FeedbackTypeOverall, "overall", nil, nil)

	tests := []struct {
		name         string
		entries      []*types.FeedbackEntry
		score        float64
		wantOverall  string
		wantSpecific string
	}{
		{"overall only", []*types.FeedbackEntry{overall}, 3.0, "overall", ""},
		{"range match", []*types.FeedbackEntry{overall, low, high}, 1.0, "overall", "low"},
		{"inclusive upper bound", []*types.FeedbackEntry{low}, 2.5, "", "low"},
		{"inclusive lower bound", []*types.FeedbackEntry{high}, 4.0, "", "high"},
		{"no range matches", []*types.FeedbackEntry{entry(types.FeedbackTypeSpecific, "x", ptr(4.5), nil)}, 1.0, "", ""},
		// Overlapping ranges: stored order decides, so the outcome never
		// flaps between runs.
		{"overlap takes first in stored order", []*types.FeedbackEntry{low, mid}, 2.2, "", "low"},
		{"overlap other order", []*types.FeedbackEntry{mid, low}, 2.2, "", "mid"},
		{"zero score matches unbounded min", []*types.FeedbackEntry{low}, 0, "", "low"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotOverall, gotSpecific := SelectFeedback(tc.entries, tc.score)
			if got := deref(gotOverall); got != tc.wantOverall {
				t.Fatalf("overall = %q, want %q", got, tc.wantOverall)
			}
			if got := deref(gotSpecific); got != tc.wantSpecific {
				t.Fatalf("specific = %q, want %q", got, tc.wantSpecific)
			}
		})
	}
}

func TestSelectFeedbackNilEntries(t *testing.T) {
	overall, specific := SelectFeedback([]*types.FeedbackEntry{nil, entry(types.FeedbackTypeOverall, "o", nil, nil)}, 3)
	if deref(overall) != "o" || specific != nil {
		t.Fatalf("nil entries must be skipped, got overall=%v specific=%v", overall, specific)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
