package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"tutorhub_backend/internal/config"
	"tutorhub_backend/internal/middleware"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/repository"
	"tutorhub_backend/internal/service"
	"tutorhub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// memStore is a single-assignment store backing the public endpoints.
type memStore struct {
	a    *model.Assignment
	exs  []model.Exercise
	subs []model.Submission
}

func (m *memStore) FindByToken(_ context.Context, token string) (*model.Assignment, error) {
	if m.a == nil || m.a.PublicToken != token {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.a
	return &cp, nil
}
func (m *memStore) FindForTutor(_ context.Context, id string, tutorID uint) (*model.Assignment, error) {
	if m.a == nil || m.a.ID != id || m.a.TutorID != tutorID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m.a
	return &cp, nil
}
func (m *memStore) ListByTutor(context.Context, uint) ([]repository.AssignmentListRow, error) {
	return nil, nil
}
func (m *memStore) ListExercises(context.Context, string) ([]model.Exercise, error) {
	return m.exs, nil
}
func (m *memStore) ListRecipients(context.Context, string) ([]model.Recipient, error) {
	return nil, nil
}
func (m *memStore) IsRecipient(context.Context, string, string) (bool, error) { return false, nil }
func (m *memStore) SaveWithChildren(_ context.Context, a *model.Assignment, exs []model.Exercise, _ []string, isNew bool) error {
	if isNew && a.ID == "" {
		a.ID = "asg-new"
	}
	for i := range exs {
		exs[i].ID = fmt.Sprintf("e%d", i+1)
		exs[i].AssignmentID = a.ID
		exs[i].OrderIndex = i
	}
	m.exs = append([]model.Exercise(nil), exs...)
	cp := *a
	m.a = &cp
	return nil
}
func (m *memStore) SetActive(_ context.Context, id string, tutorID uint, active bool) (int64, error) {
	if m.a == nil || m.a.ID != id || m.a.TutorID != tutorID {
		return 0, nil
	}
	m.a.IsActive = active
	return 1, nil
}
func (m *memStore) Delete(context.Context, string, uint) (int64, error) { return 0, nil }

func (m *memStore) Create(_ context.Context, s *model.Submission) error {
	s.ID = "sub-1"
	m.subs = append(m.subs, *s)
	return nil
}
func (m *memStore) ListByAssignment(context.Context, string) ([]model.Submission, error) {
	return m.subs, nil
}

type noStudents struct{}

func (noStudents) Create(context.Context, *model.Student) error                { return nil }
func (noStudents) ListByTutor(context.Context, uint) ([]model.Student, error) { return nil, nil }
func (noStudents) FindByAuthID(context.Context, uint, uint) (*model.Student, error) {
	return nil, gorm.ErrRecordNotFound
}
func (noStudents) FindByEmail(context.Context, uint, string) (*model.Student, error) {
	return nil, gorm.ErrRecordNotFound
}
func (noStudents) FindByIDs(context.Context, uint, []string) ([]model.Student, error) {
	return nil, nil
}

const token = "share-token"

func newPublicRouter(store *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	gate := service.NewGate(store)
	attempts := service.NewAttemptService(gate, store, nil, &config.AssignmentsConfig{})
	submissions := service.NewSubmissionService(gate, service.NewIdentityService(noStudents{}), attempts, store, store)
	c := NewPublicAssignmentController(attempts, submissions)

	cfg := &config.Config{JWT: config.JWTConfig{Secret: "secret"}}
	r := gin.New()
	g := r.Group("/api/public/assignments", middleware.TryAuthMiddleware(cfg))
	g.POST("/submit", c.Submit)
	g.GET("/:token", c.GetAssignment)
	g.POST("/:token/start", c.StartAttempt)
	return r
}

func newStore() *memStore {
	a := &model.Assignment{
		UUIDBase:    model.UUIDBase{ID: "asg-1"},
		TutorID:     1,
		Title:       "Colours",
		PublicToken: token,
		IsActive:    true,
		Audience:    model.AudienceBroadcast,
	}
	e := model.Exercise{Type: model.ExerciseFillBlank, Question: "The sky is ___", CorrectAnswer: "blue", Points: 1}
	e.ID = "e1"
	return &memStore{a: a, exs: []model.Exercise{e}}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) util.Response {
	t.Helper()
	var resp util.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return resp
}

func TestGetAssignmentHidesAnswers(t *testing.T) {
	r := newPublicRouter(newStore())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/public/assignments/"+token, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "blue") || strings.Contains(w.Body.String(), "correctAnswer") {
		t.Fatalf("answer leaked: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "The sky is ___") {
		t.Fatalf("question missing: %s", w.Body.String())
	}
}

func TestGetAssignmentStates(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(s *memStore)
		path   string
		status int
		kind   util.ErrorKind
	}{
		{"not found", nil, "/api/public/assignments/other", http.StatusNotFound, util.KindNotFound},
		{"inactive", func(s *memStore) { s.a.IsActive = false }, "/api/public/assignments/" + token, http.StatusForbidden, util.KindInactive},
		{"expired", func(s *memStore) {
			past := time.Now().Add(-time.Hour)
			s.a.DueDate = &past
		}, "/api/public/assignments/" + token, http.StatusGone, util.KindWindowExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore()
			if tc.mutate != nil {
				tc.mutate(store)
			}
			w := httptest.NewRecorder()
			newPublicRouter(store).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
			if resp := decode(t, w); resp.Kind != tc.kind {
				t.Fatalf("kind = %s, want %s", resp.Kind, tc.kind)
			}
		})
	}
}

func TestSubmitEndpoint(t *testing.T) {
	store := newStore()
	r := newPublicRouter(store)

	body, _ := json.Marshal(service.SubmitReq{
		Token:       token,
		StudentName: "Guest",
		Answers:     map[string]string{"e1": " Blue "},
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/public/assignments/submit", bytes.NewReader(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data service.SubmitResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Score != 1 || resp.Data.MaxScore != 1 || !resp.Data.IsGuestSubmission {
		t.Fatalf("result = %+v", resp.Data)
	}
	if len(store.subs) != 1 {
		t.Fatalf("stored = %d", len(store.subs))
	}
}

func TestSubmitEndpointRejectsInactive(t *testing.T) {
	store := newStore()
	store.a.IsActive = false
	r := newPublicRouter(store)

	body := `{"token":"` + token + `","studentName":"x","answers":{}}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/public/assignments/submit", strings.NewReader(body)))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d", w.Code)
	}
	if resp := decode(t, w); resp.Kind != util.KindInactive {
		t.Fatalf("kind = %s", resp.Kind)
	}
	if len(store.subs) != 0 {
		t.Fatal("rejected submission stored")
	}
}

func TestSubmitEndpointBadJSON(t *testing.T) {
	w := httptest.NewRecorder()
	newPublicRouter(newStore()).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/public/assignments/submit", strings.NewReader("{")))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStartAttemptWithoutSnapshots(t *testing.T) {
	w := httptest.NewRecorder()
	newPublicRouter(newStore()).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/public/assignments/"+token+"/start", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "attemptId") {
		t.Fatalf("attempt id without snapshots: %s", w.Body.String())
	}
}
