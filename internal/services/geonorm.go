package services

import (
	"github.com/google/uuid"
)

// GeonormResult is the peer-group baseline for one dimension: the mean score
// across the other completed members of the rating group, with the number of
// members who contributed. Value is nil when nobody contributed.
type GeonormResult struct {
	Value            *float64
	ParticipantCount int
}

// ComputeGeonorms computes per-dimension peer norms from the scores of the
// other group members (the report's own subject already excluded by the
// caller). perMember maps member -> dimension -> that member's contributing
// scores. Each member contributes one value per dimension (the mean of their
// scores) so large groups don't drown out small ones.
func ComputeGeonorms(perMember map[uuid.UUID]map[uuid.UUID][]float64, dimensionIDs []uuid.UUID) map[uuid.UUID]GeonormResult {
	out := make(map[uuid.UUID]GeonormResult, len(dimensionIDs))
	for _, dimID := range dimensionIDs {
		var memberMeans []float64
		for _, byDim := range perMember {
			scores := byDim[dimID]
			if len(scores) == 0 {
				continue
			}
			memberMeans = append(memberMeans, mean(scores))
		}
		res := GeonormResult{ParticipantCount: len(memberMeans)}
		if len(memberMeans) > 0 {
			v := mean(memberMeans)
			res.Value = &v
		}
		out[dimID] = res
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
