package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"tutorhub_backend/internal/draft"
	"tutorhub_backend/internal/grading"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/repository"
	"tutorhub_backend/internal/util"
	"tutorhub_backend/pkg/logger"
	"tutorhub_backend/pkg/tracing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ExerciseReq struct {
	Type          model.ExerciseType `json:"type"`
	Question      string             `json:"question"`
	Options       []string           `json:"options,omitempty"`
	CorrectAnswer string             `json:"correctAnswer"`
	Points        int                `json:"points"`
}

func (r ExerciseReq) toModel() model.Exercise {
	e := model.Exercise{
		Type:          r.Type,
		Question:      strings.TrimSpace(r.Question),
		CorrectAnswer: r.CorrectAnswer,
		Points:        r.Points,
	}
	e.SetOptions(r.Options)
	return e
}

func exerciseReqFrom(e model.Exercise) ExerciseReq {
	return ExerciseReq{
		Type:          e.Type,
		Question:      e.Question,
		Options:       e.OptionList(),
		CorrectAnswer: e.CorrectAnswer,
		Points:        e.Points,
	}
}

type AssignmentReq struct {
	LessonID         *string       `json:"lessonId"`
	Title            string        `json:"title" binding:"required"`
	Description      string        `json:"description"`
	IsActive         *bool         `json:"isActive"`
	Audience         string        `json:"audience"`
	TimeLimitMinutes *int          `json:"timeLimitMinutes"`
	DueDate          *time.Time    `json:"dueDate"`
	AvailableUntil   *time.Time    `json:"availableUntil"`
	Exercises        []ExerciseReq `json:"exercises"`
	RecipientIDs     []string      `json:"recipientIds"`
}

type AssignmentDetail struct {
	*model.Assignment
	ShareURL     string           `json:"shareUrl"`
	Exercises    []model.Exercise `json:"exercises"`
	RecipientIDs []string         `json:"recipientIds"`
}

type ResultRow struct {
	model.Submission
	// Latest marks the most recent submission of each taker.
	Latest bool                 `json:"latest"`
	Items  []grading.ItemResult `json:"items"`
}

type AssignmentResults struct {
	Assignment  *model.Assignment `json:"assignment"`
	Exercises   []model.Exercise  `json:"exercises"`
	Submissions []ResultRow       `json:"submissions"`
}

type AutoDraftReq struct {
	Exercises []ExerciseReq      `json:"exercises"`
	Sections  []draft.RawSection `json:"sections"`
}

type AssignmentService struct {
	Assignments AssignmentStore
	Students    StudentStore
	Submissions SubmissionStore
	Storage     StorageProvider
	PublicURL   string
	Now         func() time.Time
}

func NewAssignmentService(assignments AssignmentStore, students StudentStore, submissions SubmissionStore, storage StorageProvider, publicURL string) *AssignmentService {
	return &AssignmentService{
		Assignments: assignments,
		Students:    students,
		Submissions: submissions,
		Storage:     storage,
		PublicURL:   strings.TrimRight(publicURL, "/"),
		Now:         time.Now,
	}
}

// ShareURL is the link a tutor hands out for the public test page.
func (s *AssignmentService) ShareURL(token string) string {
	return s.PublicURL + "/assignment/" + token
}

// Save creates the assignment when id is empty and updates it otherwise. The
// exercise and recipient sets are replaced as a whole. Nothing is written if
// any part of req is invalid.
func (s *AssignmentService) Save(ctx context.Context, tutorID uint, id string, req AssignmentReq) (*AssignmentDetail, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, util.Validationf("title is required")
	}

	audience, ok := model.ParseAudience(req.Audience)
	if !ok {
		return nil, util.Validationf("unknown audience %q", req.Audience)
	}

	limit := req.TimeLimitMinutes
	if limit != nil {
		if *limit < 0 {
			return nil, util.Validationf("timeLimitMinutes must not be negative")
		}
		if *limit == 0 {
			limit = nil
		}
	}

	exercises := make([]model.Exercise, 0, len(req.Exercises))
	for i, er := range req.Exercises {
		e := er.toModel()
		if err := model.ValidateExercise(&e); err != nil {
			return nil, util.Validationf("exercise %d: %v", i+1, err)
		}
		exercises = append(exercises, e)
	}

	var recipients []string
	if audience == model.AudienceRestricted {
		recipients = uniqueIDs(req.RecipientIDs)
		if len(recipients) == 0 {
			return nil, util.Validationf("restricted assignments need at least one recipient")
		}
		found, err := s.Students.FindByIDs(ctx, tutorID, recipients)
		if err != nil {
			return nil, util.Persistence(err)
		}
		if len(found) != len(recipients) {
			return nil, util.Validationf("recipients must be students of this tutor")
		}
	}

	isNew := id == ""
	var a *model.Assignment
	if isNew {
		a = &model.Assignment{
			TutorID:     tutorID,
			PublicToken: util.NewPublicToken(),
			IsActive:    true,
		}
	} else {
		var err error
		if a, err = s.find(ctx, tutorID, id); err != nil {
			return nil, err
		}
	}

	a.LessonID = req.LessonID
	a.Title = title
	a.Description = req.Description
	a.Audience = audience
	a.TimeLimitMinutes = limit
	a.DueDate = req.DueDate
	a.AvailableUntil = req.AvailableUntil
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}

	if err := s.Assignments.SaveWithChildren(ctx, a, exercises, recipients, isNew); err != nil {
		logger.Log.Error("Failed to save assignment", zap.Uint("tutor_id", tutorID), zap.Error(err))
		return nil, util.Persistence(err)
	}

	logger.Log.Info("Assignment saved",
		zap.String("assignment_id", a.ID),
		zap.Bool("created", isNew),
		zap.Int("exercises", len(exercises)),
		zap.Int("recipients", len(recipients)),
	)

	if recipients == nil {
		recipients = []string{}
	}
	return &AssignmentDetail{
		Assignment:   a,
		ShareURL:     s.ShareURL(a.PublicToken),
		Exercises:    exercises,
		RecipientIDs: recipients,
	}, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *AssignmentService) find(ctx context.Context, tutorID uint, id string) (*model.Assignment, error) {
	a, err := s.Assignments.FindForTutor(ctx, id, tutorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, util.Persistence(err)
	}
	return a, nil
}

func (s *AssignmentService) Get(ctx context.Context, tutorID uint, id string) (*AssignmentDetail, error) {
	a, err := s.find(ctx, tutorID, id)
	if err != nil {
		return nil, err
	}

	exercises, err := s.Assignments.ListExercises(ctx, a.ID)
	if err != nil {
		return nil, util.Persistence(err)
	}
	rs, err := s.Assignments.ListRecipients(ctx, a.ID)
	if err != nil {
		return nil, util.Persistence(err)
	}

	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.StudentID)
	}
	return &AssignmentDetail{
		Assignment:   a,
		ShareURL:     s.ShareURL(a.PublicToken),
		Exercises:    exercises,
		RecipientIDs: ids,
	}, nil
}

func (s *AssignmentService) List(ctx context.Context, tutorID uint) ([]repository.AssignmentListRow, error) {
	rows, err := s.Assignments.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, util.Persistence(err)
	}
	return rows, nil
}

func (s *AssignmentService) Delete(ctx context.Context, tutorID uint, id string) error {
	n, err := s.Assignments.Delete(ctx, id, tutorID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && n == 0) {
		return util.ErrAssignmentNotFound
	}
	if err != nil {
		return util.Persistence(err)
	}
	logger.Log.Info("Assignment deleted", zap.String("assignment_id", id), zap.Uint("tutor_id", tutorID))
	return nil
}

// SetActive is the tutor's kill switch. It takes effect on the next gate check.
func (s *AssignmentService) SetActive(ctx context.Context, tutorID uint, id string, active bool) error {
	if _, err := s.find(ctx, tutorID, id); err != nil {
		return err
	}
	if _, err := s.Assignments.SetActive(ctx, id, tutorID, active); err != nil {
		return util.Persistence(err)
	}
	logger.Log.Info("Assignment active flag changed", zap.String("assignment_id", id), zap.Bool("active", active))
	return nil
}

// Results lists submissions newest first. Item breakdowns are computed against
// the current exercise set; stored scores are never recomputed.
func (s *AssignmentService) Results(ctx context.Context, tutorID uint, id string) (*AssignmentResults, error) {
	a, err := s.find(ctx, tutorID, id)
	if err != nil {
		return nil, err
	}
	exercises, err := s.Assignments.ListExercises(ctx, a.ID)
	if err != nil {
		return nil, util.Persistence(err)
	}
	subs, err := s.Submissions.ListByAssignment(ctx, a.ID)
	if err != nil {
		return nil, util.Persistence(err)
	}

	seen := make(map[string]bool, len(subs))
	rows := make([]ResultRow, 0, len(subs))
	for _, sub := range subs {
		key := takerKey(&sub)
		rows = append(rows, ResultRow{
			Submission: sub,
			Latest:     !seen[key],
			Items:      grading.Grade(exercises, sub.Answers.Data()).Items,
		})
		seen[key] = true
	}

	return &AssignmentResults{Assignment: a, Exercises: exercises, Submissions: rows}, nil
}

// takerKey groups submissions by roster student, then declared email, then name.
func takerKey(sub *model.Submission) string {
	if sub.StudentID != nil {
		return "student:" + *sub.StudentID
	}
	if sub.StudentEmail != nil {
		return "email:" + util.NormalizeEmail(*sub.StudentEmail)
	}
	return "name:" + strings.ToLower(strings.TrimSpace(sub.StudentName))
}

var exportHeader = []string{"submitted_at", "student_name", "student_email", "student_id", "guest", "score", "max_score", "latest"}

// ExportResults writes the results as CSV to object storage and returns its URL.
func (s *AssignmentService) ExportResults(ctx context.Context, tutorID uint, id string) (string, error) {
	ctx, span := tracing.StartAssignmentSpan(ctx, "assignment.export", id)
	defer span.End()

	res, err := s.Results(ctx, tutorID, id)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(exportHeader)
	for _, r := range res.Submissions {
		w.Write([]string{
			r.SubmittedAt.UTC().Format(time.RFC3339),
			r.StudentName,
			deref(r.StudentEmail),
			deref(r.StudentID),
			strconv.FormatBool(r.IsGuestSubmission),
			strconv.Itoa(r.Score),
			strconv.Itoa(r.MaxScore),
			strconv.FormatBool(r.Latest),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("exports/%s/results-%s.csv", res.Assignment.ID, s.Now().UTC().Format(util.ExportStampFormat))
	url, err := s.Storage.Upload(ctx, name, bytes.NewReader(buf.Bytes()), int64(buf.Len()), util.MimeCSV)
	if err != nil {
		logger.Log.Error("Failed to upload results export", zap.String("assignment_id", id), zap.Error(err))
		return "", util.Persistence(err)
	}
	return url, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AutoDraft appends exercises derived from lesson sections to the caller's
// list. Nothing is stored; the tutor saves the result explicitly.
func (s *AssignmentService) AutoDraft(req AutoDraftReq) []ExerciseReq {
	out := make([]ExerciseReq, 0, len(req.Exercises))
	out = append(out, req.Exercises...)
	for _, e := range draft.FromLesson(draft.Decode(req.Sections)) {
		out = append(out, exerciseReqFrom(e))
	}
	return out
}
