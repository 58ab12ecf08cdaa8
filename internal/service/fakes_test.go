package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"time"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/repository"

	"gorm.io/gorm"
)

var errStoreDown = errors.New("connection refused")

type fakeAssignments struct {
	byID       map[string]*model.Assignment
	exercises  map[string][]model.Exercise
	recipients map[string][]string
	saves      int
	failSave   bool
	failFind   bool
}

func newFakeAssignments() *fakeAssignments {
	return &fakeAssignments{
		byID:       map[string]*model.Assignment{},
		exercises:  map[string][]model.Exercise{},
		recipients: map[string][]string{},
	}
}

func (f *fakeAssignments) put(a *model.Assignment, exs []model.Exercise, recipients ...string) {
	f.byID[a.ID] = a
	f.exercises[a.ID] = exs
	f.recipients[a.ID] = recipients
}

func (f *fakeAssignments) FindByToken(_ context.Context, token string) (*model.Assignment, error) {
	if f.failFind {
		return nil, errStoreDown
	}
	for _, a := range f.byID {
		if a.PublicToken == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAssignments) FindForTutor(_ context.Context, id string, tutorID uint) (*model.Assignment, error) {
	a, ok := f.byID[id]
	if !ok || a.TutorID != tutorID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssignments) ListByTutor(_ context.Context, tutorID uint) ([]repository.AssignmentListRow, error) {
	var rows []repository.AssignmentListRow
	for _, a := range f.byID {
		if a.TutorID == tutorID {
			rows = append(rows, repository.AssignmentListRow{Assignment: *a, ExerciseCount: len(f.exercises[a.ID])})
		}
	}
	return rows, nil
}

func (f *fakeAssignments) ListExercises(_ context.Context, id string) ([]model.Exercise, error) {
	return f.exercises[id], nil
}

func (f *fakeAssignments) ListRecipients(_ context.Context, id string) ([]model.Recipient, error) {
	var rs []model.Recipient
	for _, sid := range f.recipients[id] {
		rs = append(rs, model.Recipient{AssignmentID: id, StudentID: sid, Status: model.RecipientAssigned})
	}
	return rs, nil
}

func (f *fakeAssignments) IsRecipient(_ context.Context, id, studentID string) (bool, error) {
	for _, sid := range f.recipients[id] {
		if sid == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAssignments) SaveWithChildren(_ context.Context, a *model.Assignment, exs []model.Exercise, recipientIDs []string, isNew bool) error {
	if f.failSave {
		return errStoreDown
	}
	f.saves++
	if isNew {
		a.ID = "a-" + strconv.Itoa(len(f.byID)+1)
	}
	for i := range exs {
		exs[i].ID = a.ID + "-e" + strconv.Itoa(i)
		exs[i].AssignmentID = a.ID
		exs[i].OrderIndex = i
	}
	cp := *a
	f.put(&cp, exs, recipientIDs...)
	return nil
}

func (f *fakeAssignments) SetActive(_ context.Context, id string, tutorID uint, active bool) (int64, error) {
	a, ok := f.byID[id]
	if !ok || a.TutorID != tutorID {
		return 0, nil
	}
	a.IsActive = active
	return 1, nil
}

func (f *fakeAssignments) Delete(_ context.Context, id string, tutorID uint) (int64, error) {
	a, ok := f.byID[id]
	if !ok || a.TutorID != tutorID {
		return 0, gorm.ErrRecordNotFound
	}
	delete(f.byID, id)
	delete(f.exercises, id)
	delete(f.recipients, id)
	return 1, nil
}

type fakeStudents struct {
	list     []model.Student
	failFind bool
}

func (f *fakeStudents) Create(_ context.Context, s *model.Student) error {
	s.ID = "s-" + strconv.Itoa(len(f.list)+1)
	f.list = append(f.list, *s)
	return nil
}

func (f *fakeStudents) ListByTutor(_ context.Context, tutorID uint) ([]model.Student, error) {
	var out []model.Student
	for _, s := range f.list {
		if s.TutorID == tutorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStudents) FindByAuthID(_ context.Context, tutorID, authID uint) (*model.Student, error) {
	if f.failFind {
		return nil, errStoreDown
	}
	for _, s := range f.list {
		if s.TutorID == tutorID && s.AuthID != nil && *s.AuthID == authID {
			cp := s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// FindByEmail expects an already lowercased email, like the gorm repository.
func (f *fakeStudents) FindByEmail(_ context.Context, tutorID uint, email string) (*model.Student, error) {
	if f.failFind {
		return nil, errStoreDown
	}
	for _, s := range f.list {
		if s.TutorID == tutorID && s.Email != nil && lower(*s.Email) == email {
			cp := s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStudents) FindByIDs(_ context.Context, tutorID uint, ids []string) ([]model.Student, error) {
	want := map[string]bool{}
	for _, id := range ids {
		want[id] = true
	}
	var out []model.Student
	for _, s := range f.list {
		if s.TutorID == tutorID && want[s.ID] {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeSubmissions struct {
	rows    []model.Submission
	failAdd bool
}

func (f *fakeSubmissions) Create(_ context.Context, s *model.Submission) error {
	if f.failAdd {
		return errStoreDown
	}
	s.ID = "sub-" + strconv.Itoa(len(f.rows)+1)
	f.rows = append(f.rows, *s)
	return nil
}

func (f *fakeSubmissions) ListByAssignment(_ context.Context, id string) ([]model.Submission, error) {
	var out []model.Submission
	for _, s := range f.rows {
		if s.AssignmentID == id {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

type fakeSnapshots struct {
	m    map[string]*AttemptSnapshot
	ttls map[string]time.Duration
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{m: map[string]*AttemptSnapshot{}, ttls: map[string]time.Duration{}}
}

func (f *fakeSnapshots) Put(_ context.Context, snap *AttemptSnapshot, ttl time.Duration) error {
	cp := *snap
	cp.Exercises = append([]model.Exercise(nil), snap.Exercises...)
	f.m[snap.ID] = &cp
	f.ttls[snap.ID] = ttl
	return nil
}

func (f *fakeSnapshots) Get(_ context.Context, id string) (*AttemptSnapshot, error) {
	return f.m[id], nil
}

type fakeStorage struct {
	files map[string][]byte
}

func (f *fakeStorage) Upload(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if f.files == nil {
		f.files = map[string][]byte{}
	}
	f.files[name] = data
	return "/uploads/" + name, nil
}

func (f *fakeStorage) GetURL(name string) string { return "/uploads/" + name }

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func ptr[T any](v T) *T { return &v }

func exercise(id string, t model.ExerciseType, answer string, points int) model.Exercise {
	e := model.Exercise{Type: t, Question: "q " + id, CorrectAnswer: answer, Points: points}
	e.ID = id
	return e
}

// fixture is a tutor with one assignment, two roster students and the wired services.
type fixture struct {
	now         time.Time
	assignment  *model.Assignment
	assignments *fakeAssignments
	students    *fakeStudents
	submissions *fakeSubmissions
	snapshots   *fakeSnapshots
	gate        *Gate
	attempts    *AttemptService
	submit      *SubmissionService
}

const (
	tutorID   uint = 7
	testToken      = "tok-123"
)

func newFixture() *fixture {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	f := &fixture{
		now:         now,
		assignments: newFakeAssignments(),
		students: &fakeStudents{list: []model.Student{
			{UUIDBase: model.UUIDBase{ID: "stu-1"}, TutorID: tutorID, AuthID: ptr(uint(100)), FullName: "Ana Lima", Email: ptr("Ana@Example.com"), Status: model.StudentActive},
			{UUIDBase: model.UUIDBase{ID: "stu-2"}, TutorID: tutorID, FullName: "Ben Ortiz", Email: ptr("ben@example.com"), Status: model.StudentTrial},
			{UUIDBase: model.UUIDBase{ID: "stu-x"}, TutorID: 99, FullName: "Other Tutor's", Email: ptr("x@example.com")},
		}},
		submissions: &fakeSubmissions{},
		snapshots:   newFakeSnapshots(),
	}

	f.assignment = &model.Assignment{
		UUIDBase:    model.UUIDBase{ID: "asg-1"},
		TutorID:     tutorID,
		Title:       "Unit 3 quiz",
		PublicToken: testToken,
		IsActive:    true,
		Audience:    model.AudienceBroadcast,
	}
	f.assignments.put(f.assignment, []model.Exercise{
		exercise("e1", model.ExerciseMultipleChoice, "Paris", 2),
		exercise("e2", model.ExerciseTrueFalse, "true", 1),
	})

	clock := func() time.Time { return f.now }
	f.gate = NewGate(f.assignments)
	f.attempts = &AttemptService{
		Gate:        f.gate,
		Assignments: f.assignments,
		Snapshots:   f.snapshots,
		Grace:       10 * time.Minute,
		DefaultTTL:  24 * time.Hour,
		Now:         clock,
	}
	f.submit = NewSubmissionService(f.gate, NewIdentityService(f.students), f.attempts, f.assignments, f.submissions)
	f.submit.Now = clock
	return f
}

// update mutates the stored assignment.
func (f *fixture) update(fn func(a *model.Assignment)) {
	fn(f.assignments.byID[f.assignment.ID])
}
