package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talentpulse/assessment-backend/internal/logger"
	"github.com/talentpulse/assessment-backend/internal/repos"
	"github.com/talentpulse/assessment-backend/internal/types"
)

// ErrAssignmentNotFound is the single hard failure the aggregation engine
// surfaces: a bad assignment id (or an assignment failing the shape check).
// Everything else degrades into a fully shaped, possibly partial, document.
var ErrAssignmentNotFound = errors.New("Assignment not found")

const DefaultImprovementThreshold = 2.5

type ReportService interface {
	// GenerateReport runs the aggregation pipeline for one assignment and
	// persists the result (idempotent upsert of the score sub-document).
	GenerateReport(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.ReportDocument, error)
	// GetReport returns the persisted document, generating it on first read.
	GetReport(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.ReportDocument, error)
	QueueRender(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, newVersion bool) (*types.Report, error)
	RenderStatus(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Report, error)
}

type reportService struct {
	db         *gorm.DB
	log        *logger.Logger
	assign     repos.AssignmentRepo
	groups     repos.GroupRepo
	dims       repos.DimensionRepo
	scores     repos.DimensionScoreRepo
	answers    repos.AnswerRepo
	benchmarks repos.BenchmarkRepo
	feedback   repos.FeedbackRepo
	reports    repos.ReportRepo

	improvementThreshold float64
}

func NewReportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	assign repos.AssignmentRepo,
	groups repos.GroupRepo,
	dims repos.DimensionRepo,
	scores repos.DimensionScoreRepo,
	answers repos.AnswerRepo,
	benchmarks repos.BenchmarkRepo,
	feedback repos.FeedbackRepo,
	reports repos.ReportRepo,
	improvementThreshold float64,
) ReportService {
	if improvementThreshold <= 0 {
		improvementThreshold = DefaultImprovementThreshold
	}
	return &reportService{
		db:                   db,
		log:                  baseLog.With("service", "ReportService"),
		assign:               assign,
		groups:               groups,
		dims:                 dims,
		scores:               scores,
		answers:              answers,
		benchmarks:           benchmarks,
		feedback:             feedback,
		reports:              reports,
		improvementThreshold: improvementThreshold,
	}
}

func (s *reportService) GenerateReport(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.ReportDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	a, err := s.assign.GetByID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.Assessment == nil {
		return nil, ErrAssignmentNotFound
	}
	subjectID := a.SubjectID()

	group, err := s.resolveGroup(ctx, transaction, a)
	if err != nil {
		return nil, err
	}

	peers, err := s.loadCompletedPeers(ctx, transaction, a, subjectID, group)
	if err != nil {
		return nil, err
	}

	roots, err := s.dims.ListRootsByAssessment(ctx, transaction, a.AssessmentID)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, ErrAssignmentNotFound
	}

	var members []*types.GroupMember
	if group != nil {
		members, err = s.groups.ListMembers(ctx, transaction, group.ID)
		if err != nil {
			return nil, err
		}
	}

	doc := &types.ReportDocument{
		AssignmentID: a.ID,
		AssessmentID: a.AssessmentID,
		Assessment:   a.Assessment.Title,
		TargetID:     a.TargetID,
		GeneratedAt:  time.Now().UTC(),
	}
	if a.Target != nil {
		doc.TargetName = a.Target.FirstName + " " + a.Target.LastName
	}

	if len(peers) == 0 {
		s.buildPartial(ctx, transaction, doc, a, roots, len(members))
	} else {
		if err := s.buildComplete(ctx, transaction, doc, a, roots, peers, members, subjectID, group); err != nil {
			return nil, err
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal report document: %w", err)
	}
	if _, err := s.reports.UpsertScores(ctx, transaction, a.ID, doc.OverallScore, doc.Partial, raw); err != nil {
		return nil, err
	}
	return doc, nil
}

// resolveGroup prefers the assignment's own group link, then falls back to a
// lookup by target.
func (s *reportService) resolveGroup(ctx context.Context, tx *gorm.DB, a *types.Assignment) (*types.Group, error) {
	if a.GroupID != nil && *a.GroupID != uuid.Nil {
		g, err := s.groups.GetByID(ctx, tx, *a.GroupID)
		if err != nil {
			return nil, err
		}
		if g != nil {
			return g, nil
		}
	}
	if a.TargetID != nil && *a.TargetID != uuid.Nil {
		return s.groups.GetByTarget(ctx, tx, *a.TargetID)
	}
	return nil, nil
}

// loadCompletedPeers fetches completed peer assignments for the subject. A
// group-scoped query that comes back empty falls back to an unscoped one:
// early assignments may lack the group link and must not be read as "no
// data".
func (s *reportService) loadCompletedPeers(ctx context.Context, tx *gorm.DB, a *types.Assignment, subjectID uuid.UUID, group *types.Group) ([]*types.Assignment, error) {
	if group != nil {
		peers, err := s.assign.ListCompletedForSubject(ctx, tx, a.AssessmentID, subjectID, &group.ID)
		if err != nil {
			return nil, err
		}
		if len(peers) > 0 {
			return peers, nil
		}
		s.log.Debug("No group-scoped peer assignments, falling back to unscoped query",
			"assignment_id", a.ID, "group_id", group.ID)
	}
	return s.assign.ListCompletedForSubject(ctx, tx, a.AssessmentID, subjectID, nil)
}

// buildPartial emits the placeholder document: one zeroed section per root
// dimension, still fully shaped so consumers never special-case "no report".
func (s *reportService) buildPartial(ctx context.Context, tx *gorm.DB, doc *types.ReportDocument, a *types.Assignment, roots []*types.Dimension, memberCount int) {
	doc.Partial = true
	doc.OverallScore = 0
	doc.Responses = types.ResponseSummary{Completed: 0, Total: memberCount}
	doc.Dimensions = make([]types.DimensionSection, 0, len(roots))
	for _, d := range roots {
		section := types.DimensionSection{
			DimensionID:       d.ID,
			Name:              d.Name,
			Code:              d.Code,
			Description:       d.Description,
			OverallScore:      0,
			ImprovementNeeded: false,
			TextFeedback:      []string{},
			IndustryBenchmark: s.lookupBenchmark(ctx, tx, d.ID, a.Assessment.Industry),
		}
		// Overall feedback is score-independent, so the placeholder carries
		// it; specific feedback would misread a zeroed section as a real low
		// score and stays nil.
		entries := s.lookupFeedback(ctx, tx, a.AssessmentID, d.ID)
		section.OverallFeedback, _ = SelectFeedback(entries, 0)
		section.SpecificFeedback = nil
		doc.Dimensions = append(doc.Dimensions, section)
	}
}

func (s *reportService) buildComplete(ctx context.Context, tx *gorm.DB, doc *types.ReportDocument, a *types.Assignment, roots []*types.Dimension, peers []*types.Assignment, members []*types.GroupMember, subjectID uuid.UUID, group *types.Group) error {
	all, err := s.dims.ListByAssessment(ctx, tx, a.AssessmentID)
	if err != nil {
		return err
	}
	rootOf := rootResolution(all)

	peerIDs := make([]uuid.UUID, 0, len(peers))
	raterByAssignment := make(map[uuid.UUID]string, len(peers))
	roleByUser := make(map[uuid.UUID]string, len(members))
	for _, m := range members {
		roleByUser[m.UserID] = m.Role
	}
	for _, p := range peers {
		peerIDs = append(peerIDs, p.ID)
		raterByAssignment[p.ID] = classifyRater(p.UserID, subjectID, roleByUser)
	}

	scoreRows, err := s.scores.ListByAssignments(ctx, tx, peerIDs)
	if err != nil {
		return err
	}

	// Per root dimension: every contributing score, and per-rater-type
	// buckets. Zero-valued aggregates are appended like any other score;
	// only genuinely missing rows leave a bucket empty.
	allScores := make(map[uuid.UUID][]float64)
	bucketScores := make(map[uuid.UUID]map[string][]float64)
	for _, row := range scoreRows {
		rootID, ok := rootOf[row.DimensionID]
		if !ok {
			continue
		}
		allScores[rootID] = append(allScores[rootID], row.AvgScore)
		rt := raterByAssignment[row.AssignmentID]
		if bucketScores[rootID] == nil {
			bucketScores[rootID] = make(map[string][]float64)
		}
		bucketScores[rootID][rt] = append(bucketScores[rootID][rt], row.AvgScore)
	}

	textByRoot, err := s.loadTextFeedback(ctx, tx, peerIDs, rootOf)
	if err != nil {
		return err
	}

	geonorms := s.computePeerNorms(ctx, tx, a, roots, members, subjectID, group, rootOf)

	memberCount := len(members)
	if memberCount == 0 {
		memberCount = len(peers)
	}
	doc.Partial = false
	doc.Responses = types.ResponseSummary{Completed: len(peers), Total: memberCount}
	doc.Dimensions = make([]types.DimensionSection, 0, len(roots))

	var overallSum float64
	for _, d := range roots {
		section := types.DimensionSection{
			DimensionID:       d.ID,
			Name:              d.Name,
			Code:              d.Code,
			Description:       d.Description,
			TextFeedback:      textByRoot[d.ID],
			IndustryBenchmark: s.lookupBenchmark(ctx, tx, d.ID, a.Assessment.Industry),
		}
		if section.TextFeedback == nil {
			section.TextFeedback = []string{}
		}

		if contributing := allScores[d.ID]; len(contributing) > 0 {
			avg := mean(contributing)
			section.OverallScore = avg
			section.RaterBreakdown.AllRaters = &avg
		}
		for rt, vals := range bucketScores[d.ID] {
			if len(vals) == 0 {
				continue
			}
			v := mean(vals)
			*section.RaterBreakdown.Bucket(rt) = &v
		}

		if gn, ok := geonorms[d.ID]; ok {
			section.Geonorm = gn.Value
			section.GeonormParticipantCount = gn.ParticipantCount
		}

		section.ImprovementNeeded = section.OverallScore < s.improvementThreshold

		entries := s.lookupFeedback(ctx, tx, a.AssessmentID, d.ID)
		section.OverallFeedback, section.SpecificFeedback = SelectFeedback(entries, section.OverallScore)

		overallSum += section.OverallScore
		doc.Dimensions = append(doc.Dimensions, section)
	}

	// Report-level score is the straight mean of root sections, zeros
	// included.
	doc.OverallScore = overallSum / float64(len(roots))
	return nil
}

func (s *reportService) loadTextFeedback(ctx context.Context, tx *gorm.DB, peerIDs []uuid.UUID, rootOf map[uuid.UUID]uuid.UUID) (map[uuid.UUID][]string, error) {
	rows, err := s.answers.ListTextByAssignments(ctx, tx, peerIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]string)
	for _, ans := range rows {
		if ans.TextValue == nil || *ans.TextValue == "" {
			continue
		}
		rootID, ok := rootOf[ans.DimensionID]
		if !ok {
			continue
		}
		out[rootID] = append(out[rootID], *ans.TextValue)
	}
	return out, nil
}

// computePeerNorms runs the scoped aggregation for every other completed
// member of the rating group, excluding the report's own subject.
func (s *reportService) computePeerNorms(ctx context.Context, tx *gorm.DB, a *types.Assignment, roots []*types.Dimension, members []*types.GroupMember, subjectID uuid.UUID, group *types.Group, rootOf map[uuid.UUID]uuid.UUID) map[uuid.UUID]GeonormResult {
	rootIDs := make([]uuid.UUID, 0, len(roots))
	for _, d := range roots {
		rootIDs = append(rootIDs, d.ID)
	}
	if group == nil || len(members) == 0 {
		return ComputeGeonorms(nil, rootIDs)
	}

	perMember := make(map[uuid.UUID]map[uuid.UUID][]float64)
	for _, m := range members {
		if m.UserID == subjectID {
			continue
		}
		peerAssignments, err := s.assign.ListCompletedForSubject(ctx, tx, a.AssessmentID, m.UserID, &group.ID)
		if err != nil {
			s.log.Warn("Peer norm member lookup failed, skipping member",
				"error", err, "member_user_id", m.UserID)
			continue
		}
		if len(peerAssignments) == 0 {
			continue
		}
		ids := make([]uuid.UUID, 0, len(peerAssignments))
		for _, pa := range peerAssignments {
			ids = append(ids, pa.ID)
		}
		rows, err := s.scores.ListByAssignments(ctx, tx, ids)
		if err != nil {
			s.log.Warn("Peer norm score lookup failed, skipping member",
				"error", err, "member_user_id", m.UserID)
			continue
		}
		byDim := make(map[uuid.UUID][]float64)
		for _, row := range rows {
			rootID, ok := rootOf[row.DimensionID]
			if !ok {
				continue
			}
			byDim[rootID] = append(byDim[rootID], row.AvgScore)
		}
		if len(byDim) > 0 {
			perMember[m.UserID] = byDim
		}
	}
	return ComputeGeonorms(perMember, rootIDs)
}

// lookupBenchmark degrades to nil on any error: a missing benchmark never
// fails the report.
func (s *reportService) lookupBenchmark(ctx context.Context, tx *gorm.DB, dimensionID uuid.UUID, industry string) *float64 {
	b, err := s.benchmarks.GetByDimensionAndIndustry(ctx, tx, dimensionID, industry)
	if err != nil {
		s.log.Warn("Benchmark lookup failed, continuing without benchmark",
			"error", err, "dimension_id", dimensionID, "industry", industry)
		return nil
	}
	if b == nil {
		return nil
	}
	v := b.Value
	return &v
}

func (s *reportService) lookupFeedback(ctx context.Context, tx *gorm.DB, assessmentID, dimensionID uuid.UUID) []*types.FeedbackEntry {
	entries, err := s.feedback.ListByDimension(ctx, tx, assessmentID, dimensionID)
	if err != nil {
		s.log.Warn("Feedback lookup failed, continuing without feedback",
			"error", err, "dimension_id", dimensionID)
		return nil
	}
	return entries
}

func (s *reportService) GetReport(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.ReportDocument, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	rep, err := s.reports.GetByAssignmentID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, err
	}
	if rep == nil || len(rep.Document) == 0 {
		return s.GenerateReport(ctx, transaction, assignmentID)
	}
	var doc types.ReportDocument
	if err := json.Unmarshal(rep.Document, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal stored report document: %w", err)
	}
	return &doc, nil
}

func (s *reportService) QueueRender(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID, newVersion bool) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	rep, err := s.reports.GetByAssignmentID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		// First render request for an assignment that was never aggregated:
		// produce the document, then queue.
		if _, err := s.GenerateReport(ctx, transaction, assignmentID); err != nil {
			return nil, err
		}
	}
	return s.reports.QueueRender(ctx, transaction, assignmentID, newVersion)
}

func (s *reportService) RenderStatus(ctx context.Context, tx *gorm.DB, assignmentID uuid.UUID) (*types.Report, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}
	rep, err := s.reports.GetByAssignmentID(ctx, transaction, assignmentID)
	if err != nil {
		return nil, err
	}
	if rep == nil {
		return nil, ErrAssignmentNotFound
	}
	return rep, nil
}

// classifyRater maps a rater to a rater type: the subject rates as self, a
// known group member rates with the member role, anyone else is other.
func classifyRater(raterUserID, subjectID uuid.UUID, roleByUser map[uuid.UUID]string) string {
	if raterUserID == subjectID {
		return types.RaterTypeSelf
	}
	switch roleByUser[raterUserID] {
	case types.RaterTypePeer:
		return types.RaterTypePeer
	case types.RaterTypeDirectReport:
		return types.RaterTypeDirectReport
	case types.RaterTypeSupervisor:
		return types.RaterTypeSupervisor
	default:
		return types.RaterTypeOther
	}
}

// rootResolution maps every dimension to its root by walking parent chains.
func rootResolution(all []*types.Dimension) map[uuid.UUID]uuid.UUID {
	byID := make(map[uuid.UUID]*types.Dimension, len(all))
	for _, d := range all {
		byID[d.ID] = d
	}
	out := make(map[uuid.UUID]uuid.UUID, len(all))
	for _, d := range all {
		cur := d
		for depth := 0; cur.ParentID != nil && depth < len(all); depth++ {
			parent, ok := byID[*cur.ParentID]
			if !ok {
				break
			}
			cur = parent
		}
		out[d.ID] = cur.ID
	}
	return out
}
