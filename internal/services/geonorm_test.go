package services

import (
	"testing"

	"github.com/google/uuid"
)

func TestComputeGeonorms(t *testing.T) {
	dimA := uuid.New()
	dimB := uuid.New()
	memberX := uuid.New()
	memberY := uuid.New()

	perMember := map[uuid.UUID]map[uuid.UUID][]float64{
		// X was rated twice on A: the member mean (3) contributes, not each
		// raw score, so heavily rated members don't dominate.
		memberX: {dimA: {2, 4}},
		memberY: {dimA: {5}},
	}

	out := ComputeGeonorms(perMember, []uuid.UUID{dimA, dimB})

	a := out[dimA]
	if a.Value == nil || *a.Value != 4 {
		t.Fatalf("dimA geonorm = %v, want 4 (mean of member means 3 and 5)", a.Value)
	}
	if a.ParticipantCount != 2 {
		t.Fatalf("dimA participants = %d, want 2", a.ParticipantCount)
	}

	b := out[dimB]
	if b.Value != nil {
		t.Fatalf("dimB has no contributors, geonorm must be nil, got %v", *b.Value)
	}
	if b.ParticipantCount != 0 {
		t.Fatalf("dimB participants = %d, want 0", b.ParticipantCount)
	}
}

func TestComputeGeonormsEmpty(t *testing.T) {
	dim := uuid.New()
	out := ComputeGeonorms(nil, []uuid.UUID{dim})
	if res := out[dim]; res.Value != nil || res.ParticipantCount != 0 {
		t.Fatalf("empty input must yield nil value, got %+v", res)
	}
}

func TestComputeGeonormsZeroScores(t *testing.T) {
	dim := uuid.New()
	member := uuid.New()
	out := ComputeGeonorms(map[uuid.UUID]map[uuid.UUID][]float64{
		member: {dim: {0, 0}},
	}, []uuid.UUID{dim})
	res := out[dim]
	if res.Value == nil || *res.Value != 0 {
		t.Fatalf("all-zero scores are real scores: value = %v, want 0", res.Value)
	}
	if res.ParticipantCount != 1 {
		t.Fatalf("participants = %d, want 1", res.ParticipantCount)
	}
}
