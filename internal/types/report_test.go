package types

import (
	"testing"

	"github.com/google/uuid"
)

func TestPDFStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to PDFStatus
		want     bool
	}{
		{PDFStatusQueued, PDFStatusGenerating, true},
		{PDFStatusGenerating, PDFStatusReady, true},
		{PDFStatusGenerating, PDFStatusFailed, true},

		// queued must never skip generating
		{PDFStatusQueued, PDFStatusReady, false},
		{PDFStatusQueued, PDFStatusFailed, false},
		{PDFStatusNone, PDFStatusGenerating, false},
		{PDFStatusReady, PDFStatusGenerating, false},
		{PDFStatusFailed, PDFStatusGenerating, false},
		{PDFStatusReady, PDFStatusFailed, false},

		// external re-queue is legal from any state
		{PDFStatusNone, PDFStatusQueued, true},
		{PDFStatusQueued, PDFStatusQueued, true},
		{PDFStatusGenerating, PDFStatusQueued, true},
		{PDFStatusReady, PDFStatusQueued, true},
		{PDFStatusFailed, PDFStatusQueued, true},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Fatalf("transition %q -> %q: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestPDFStatusTerminal(t *testing.T) {
	if !PDFStatusReady.Terminal() || !PDFStatusFailed.Terminal() {
		t.Fatalf("ready and failed must be terminal")
	}
	if PDFStatusQueued.Terminal() || PDFStatusGenerating.Terminal() || PDFStatusNone.Terminal() {
		t.Fatalf("non-terminal status reported terminal")
	}
}

func TestArtifactKey(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	got := ArtifactKey(id, 3)
	want := "11111111-2222-3333-4444-555555555555/v3.pdf"
	if got != want {
		t.Fatalf("artifact key: got %q, want %q", got, want)
	}
	if ArtifactKey(id, 3) != got {
		t.Fatalf("artifact key must be stable for the same version")
	}
}

func TestAssignmentSubjectID(t *testing.T) {
	userID := uuid.New()
	targetID := uuid.New()

	a := &Assignment{UserID: userID}
	if a.SubjectID() != userID {
		t.Fatalf("self assignment subject should be the assignment user")
	}

	a.TargetID = &targetID
	if a.SubjectID() != targetID {
		t.Fatalf("rated assignment subject should be the target")
	}
}

func TestFeedbackEntryMatches(t *testing.T) {
	lo, hi := 1.0, 2.5
	cases := []struct {
		name  string
		entry FeedbackEntry
		score float64
		want  bool
	}{
		{"overall matches anything", FeedbackEntry{Type: FeedbackTypeOverall}, 99, true},
		{"inside range", FeedbackEntry{Type: FeedbackTypeSpecific, MinScore: &lo, MaxScore: &hi}, 2.0, true},
		{"inclusive bounds", FeedbackEntry{Type: FeedbackTypeSpecific, MinScore: &lo, MaxScore: &hi}, 2.5, true},
		{"below range", FeedbackEntry{Type: FeedbackTypeSpecific, MinScore: &lo, MaxScore: &hi}, 0.5, false},
		{"above range", FeedbackEntry{Type: FeedbackTypeSpecific, MinScore: &lo, MaxScore: &hi}, 3.0, false},
		{"open lower bound", FeedbackEntry{Type: FeedbackTypeSpecific, MaxScore: &hi}, 0, true},
		{"open upper bound", FeedbackEntry{Type: FeedbackTypeSpecific, MinScore: &lo}, 5, true},
		{"unbounded", FeedbackEntry{Type: FeedbackTypeSpecific}, 0, true},
	}
	for _, c := range cases {
		if got := c.entry.Matches(c.score); got != c.want {
			t.Fatalf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}
