package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/types"
)

// Fixture is a minimal seeded world for repo tests: one assessment with two
// root dimensions, a target user, their rating group and the target's own
// assignment.
type Fixture struct {
	Assessment *types.Assessment
	Target     *types.User
	Group      *types.Group
	Assignment *types.Assignment
	Leadership *types.Dimension
	Comm       *types.Dimension
}

func Seed(t *testing.T, tx *gorm.DB) *Fixture {
	t.Helper()
	f := &Fixture{}

	f.Assessment = &types.Assessment{Title: "Leadership 360", Industry: "technology"}
	mustCreate(t, tx, f.Assessment)

	f.Target = &types.User{FirstName: "Dana", LastName: "Reyes", Email: "dana@example.test"}
	mustCreate(t, tx, f.Target)

	f.Group = &types.Group{Name: "Dana's raters", TargetID: &f.Target.ID}
	mustCreate(t, tx, f.Group)

	f.Leadership = &types.Dimension{AssessmentID: f.Assessment.ID, Name: "Leadership", Code: "LEAD", SortOrder: 1}
	mustCreate(t, tx, f.Leadership)
	f.Comm = &types.Dimension{AssessmentID: f.Assessment.ID, Name: "Communication", Code: "COMM", SortOrder: 2}
	mustCreate(t, tx, f.Comm)

	f.Assignment = &types.Assignment{
		UserID:       f.Target.ID,
		AssessmentID: f.Assessment.ID,
		TargetID:     &f.Target.ID,
		GroupID:      &f.Group.ID,
	}
	mustCreate(t, tx, f.Assignment)
	return f
}

// SeedRater adds one completed rater assignment with a score per dimension.
func (f *Fixture) SeedRater(t *testing.T, tx *gorm.DB, role string, scores map[uuid.UUID]float64) *types.Assignment {
	t.Helper()
	rater := &types.User{FirstName: "Rater", LastName: uuid.NewString()[:8], Email: uuid.NewString() + "@example.test"}
	mustCreate(t, tx, rater)
	mustCreate(t, tx, &types.GroupMember{GroupID: f.Group.ID, UserID: rater.ID, Role: role})

	a := &types.Assignment{
		UserID:       rater.ID,
		AssessmentID: f.Assessment.ID,
		TargetID:     &f.Target.ID,
		GroupID:      &f.Group.ID,
		Completed:    true,
	}
	mustCreate(t, tx, a)
	for dimID, v := range scores {
		mustCreate(t, tx, &types.DimensionScore{AssignmentID: a.ID, DimensionID: dimID, AvgScore: v})
	}
	return a
}

func mustCreate(t *testing.T, tx *gorm.DB, v interface{}) {
	t.Helper()
	if err := tx.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
