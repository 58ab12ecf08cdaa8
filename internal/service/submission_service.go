package service

import (
	"context"
	"strings"
	"time"
	"tutorhub_backend/internal/grading"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/util"
	"tutorhub_backend/pkg/logger"
	"tutorhub_backend/pkg/monitoring"
	"tutorhub_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type SubmitReq struct {
	Token        string            `json:"token"`
	StudentName  string            `json:"studentName"`
	StudentEmail string            `json:"studentEmail"`
	Answers      map[string]string `json:"answers"`
	StartedAt    string            `json:"startedAt"`
	AttemptID    string            `json:"attemptId"`
}

type SubmitResult struct {
	SubmissionID        string  `json:"submissionId"`
	Score               int     `json:"score"`
	MaxScore            int     `json:"maxScore"`
	IsGuestSubmission   bool    `json:"isGuestSubmission"`
	ResolvedStudentName *string `json:"resolvedStudentName,omitempty"`
}

type SubmissionService struct {
	Gate        *Gate
	Identity    *IdentityService
	Attempts    *AttemptService
	Assignments AssignmentStore
	Submissions SubmissionStore
	// Feed is optional; nil disables live results.
	Feed ResultsFeed
	Now  func() time.Time
}

func NewSubmissionService(gate *Gate, identity *IdentityService, attempts *AttemptService, assignments AssignmentStore, submissions SubmissionStore) *SubmissionService {
	return &SubmissionService{
		Gate:        gate,
		Identity:    identity,
		Attempts:    attempts,
		Assignments: assignments,
		Submissions: submissions,
		Now:         time.Now,
	}
}

// Submit re-checks eligibility, grades the answers and stores exactly one
// submission. Nothing is written when any check fails.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitReq, caller *uint) (*SubmitResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "submission.submit")
	defer span.End()

	res, err := s.submit(ctx, req, caller)
	outcome := "accepted"
	if err != nil {
		kind, status, _ := util.Classify(err)
		outcome = string(kind)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if status >= 500 {
			logger.Log.Error("Submission failed", zap.String("token", req.Token), zap.Error(err))
		} else {
			logger.Log.Info("Submission rejected", zap.String("token", req.Token), zap.String("kind", outcome))
		}
	}
	span.SetAttributes(tracing.OutcomeKey.String(outcome))
	monitoring.SubmissionCounter.WithLabelValues(outcome).Inc()
	return res, err
}

func (s *SubmissionService) submit(ctx context.Context, req SubmitReq, caller *uint) (*SubmitResult, error) {
	token := strings.TrimSpace(req.Token)
	name := strings.TrimSpace(req.StudentName)
	if token == "" {
		return nil, util.Validationf("token is required")
	}
	if name == "" {
		return nil, util.Validationf("studentName is required")
	}

	startedAt, err := parseStartedAt(req.StartedAt)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	snap := s.Attempts.Lookup(ctx, req.AttemptID, token)
	if snap != nil {
		startedAt = &snap.StartedAt
	}

	gateCtx, gateSpan := tracing.Tracer.Start(ctx, "submission.gate")
	a, student, err := s.authorize(gateCtx, token, startedAt, caller, req.StudentEmail, now)
	gateSpan.End()
	if err != nil {
		return nil, err
	}

	tracing.TagAssignment(ctx, a.ID)
	return s.record(ctx, a, student, snap, startedAt, name, req, now)
}

// authorize runs the gate, resolves the taker and applies the audience rule.
func (s *SubmissionService) authorize(ctx context.Context, token string, startedAt *time.Time, caller *uint, email string, now time.Time) (*model.Assignment, *model.Student, error) {
	a, err := s.Gate.Authorize(ctx, token, startedAt, now)
	if err != nil {
		return nil, nil, err
	}

	student, err := s.Identity.Resolve(ctx, a.TutorID, caller, email)
	if err != nil {
		return nil, nil, err
	}

	if err := s.Gate.CheckAudience(ctx, a, student); err != nil {
		return nil, nil, err
	}
	return a, student, nil
}

func (s *SubmissionService) record(ctx context.Context, a *model.Assignment, student *model.Student, snap *AttemptSnapshot, startedAt *time.Time, name string, req SubmitReq, now time.Time) (*SubmitResult, error) {
	var exercises []model.Exercise
	if snap != nil && snap.AssignmentID == a.ID {
		exercises = snap.Exercises
	} else {
		snap = nil
		var err error
		exercises, err = s.Assignments.ListExercises(ctx, a.ID)
		if err != nil {
			return nil, util.Persistence(err)
		}
	}

	answers := req.Answers
	if answers == nil {
		answers = map[string]string{}
	}

	_, gradeSpan := tracing.StartAssignmentSpan(ctx, "submission.grade", a.ID)
	result := grading.Grade(exercises, answers)
	gradeSpan.SetAttributes(attribute.Int("score", result.Score), attribute.Int("max_score", result.MaxScore))
	gradeSpan.End()

	sub := &model.Submission{
		AssignmentID:      a.ID,
		StudentName:       name,
		StudentEmail:      util.StringPtr(req.StudentEmail),
		Answers:           datatypes.NewJSONType(answers),
		Score:             result.Score,
		MaxScore:          result.MaxScore,
		IsGuestSubmission: student == nil,
		StartedAt:         startedAt,
		SubmittedAt:       now,
	}
	if student != nil {
		sub.StudentID = &student.ID
	}
	if snap != nil {
		sub.AttemptID = &snap.ID
	}

	var persistAttrs []attribute.KeyValue
	if sub.AttemptID != nil {
		persistAttrs = append(persistAttrs, tracing.AttemptIDKey.String(*sub.AttemptID))
	}
	persistCtx, persistSpan := tracing.StartAssignmentSpan(ctx, "submission.persist", a.ID, persistAttrs...)
	err := s.Submissions.Create(persistCtx, sub)
	persistSpan.End()
	if err != nil {
		return nil, util.Persistence(err)
	}

	monitoring.ScoreRatio.Observe(result.Ratio())
	logger.Log.Info("Submission recorded",
		zap.String("assignment_id", a.ID),
		zap.String("submission_id", sub.ID),
		zap.Int("score", result.Score),
		zap.Int("max_score", result.MaxScore),
		zap.Bool("guest", sub.IsGuestSubmission),
	)

	if s.Feed != nil {
		s.Feed.Publish(a.TutorID, FeedEvent{
			AssignmentID:      a.ID,
			SubmissionID:      sub.ID,
			StudentName:       sub.StudentName,
			StudentID:         sub.StudentID,
			Score:             sub.Score,
			MaxScore:          sub.MaxScore,
			IsGuestSubmission: sub.IsGuestSubmission,
			SubmittedAt:       sub.SubmittedAt,
		})
	}

	out := &SubmitResult{
		SubmissionID:      sub.ID,
		Score:             result.Score,
		MaxScore:          result.MaxScore,
		IsGuestSubmission: sub.IsGuestSubmission,
	}
	if student != nil {
		out.ResolvedStudentName = &student.FullName
	}
	return out, nil
}

// parseStartedAt accepts RFC 3339 with or without fractional seconds. Blank means absent.
func parseStartedAt(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, util.Validationf("startedAt must be an RFC 3339 timestamp")
	}
	return &t, nil
}
