package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"
	"tutorhub_backend/internal/config"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/util"
	"tutorhub_backend/pkg/logger"
	"tutorhub_backend/pkg/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

// AttemptSnapshot freezes the server start time and the exercise set of one attempt.
type AttemptSnapshot struct {
	ID           string           `json:"id"`
	Token        string           `json:"token"`
	AssignmentID string           `json:"assignmentId"`
	StartedAt    time.Time        `json:"startedAt"`
	Exercises    []model.Exercise `json:"exercises"`
}

// SnapshotStore keeps attempt snapshots until they expire. Get returns nil, nil
// for unknown ids.
type SnapshotStore interface {
	Put(ctx context.Context, snap *AttemptSnapshot, ttl time.Duration) error
	Get(ctx context.Context, id string) (*AttemptSnapshot, error)
}

const attemptKeyPrefix = "attempt:"

type RedisSnapshotStore struct {
	Redis *redis.Client
}

func NewRedisSnapshotStore(rdb *redis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{Redis: rdb}
}

func (s *RedisSnapshotStore) Put(ctx context.Context, snap *AttemptSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, attemptKeyPrefix+snap.ID, data, ttl).Err()
}

func (s *RedisSnapshotStore) Get(ctx context.Context, id string) (*AttemptSnapshot, error) {
	data, err := s.Redis.Get(ctx, attemptKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap AttemptSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// PublicAssignment is what a taker sees. Answer keys are never included.
type PublicAssignment struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Audience         model.Audience   `json:"audience"`
	TimeLimitMinutes *int             `json:"timeLimitMinutes,omitempty"`
	DueDate          *time.Time       `json:"dueDate,omitempty"`
	AvailableUntil   *time.Time       `json:"availableUntil,omitempty"`
	Items            []PublicExercise `json:"exercises"`
}

type PublicExercise struct {
	ID         string             `json:"id"`
	Type       model.ExerciseType `json:"type"`
	Question   string             `json:"question"`
	Options    []string           `json:"options,omitempty"`
	Points     int                `json:"points"`
	OrderIndex int                `json:"orderIndex"`
}

// PublicView is the result of opening a link: either the assignment or the
// reason it cannot be taken.
type PublicView struct {
	State      GateState         `json:"kind"`
	Assignment *PublicAssignment `json:"assignment,omitempty"`
}

// AttemptTicket is returned when a taker starts an attempt. AttemptID is empty
// when snapshots are disabled.
type AttemptTicket struct {
	AttemptID string    `json:"attemptId,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

// AttemptService serves the public side before submission: opening a link and
// starting an attempt.
type AttemptService struct {
	Gate        *Gate
	Assignments AssignmentStore
	Snapshots   SnapshotStore
	Grace       time.Duration
	DefaultTTL  time.Duration
	Now         func() time.Time
}

func NewAttemptService(gate *Gate, assignments AssignmentStore, snapshots SnapshotStore, cfg *config.AssignmentsConfig) *AttemptService {
	return &AttemptService{
		Gate:        gate,
		Assignments: assignments,
		Snapshots:   snapshots,
		Grace:       time.Duration(cfg.SnapshotGraceMinutes) * time.Minute,
		DefaultTTL:  time.Duration(cfg.SnapshotDefaultHours) * time.Hour,
		Now:         time.Now,
	}
}

// View evaluates the gate and, when eligible, returns the assignment without answers.
func (s *AttemptService) View(ctx context.Context, token string) (*PublicView, error) {
	state, a, err := s.Gate.Evaluate(ctx, token, s.Now())
	if err != nil {
		return nil, err
	}
	if state != StateEligible {
		return &PublicView{State: state}, nil
	}

	exercises, err := s.Assignments.ListExercises(ctx, a.ID)
	if err != nil {
		return nil, util.Persistence(err)
	}

	pub, err := toPublic(a, exercises)
	if err != nil {
		return nil, err
	}
	return &PublicView{State: state, Assignment: pub}, nil
}

func toPublic(a *model.Assignment, exercises []model.Exercise) (*PublicAssignment, error) {
	var pub PublicAssignment
	if err := copier.Copy(&pub, a); err != nil {
		return nil, err
	}
	pub.ID = a.ID

	pub.Items = make([]PublicExercise, 0, len(exercises))
	for i := range exercises {
		e := &exercises[i]
		pub.Items = append(pub.Items, PublicExercise{
			ID:         e.ID,
			Type:       e.Type,
			Question:   e.Question,
			Options:    e.OptionList(),
			Points:     e.Points,
			OrderIndex: e.OrderIndex,
		})
	}
	return &pub, nil
}

// Start records the server-side start of an attempt. With snapshots enabled the
// exercise set is frozen so later edits by the tutor do not affect grading.
func (s *AttemptService) Start(ctx context.Context, token string) (*AttemptTicket, error) {
	now := s.Now()
	state, a, err := s.Gate.Evaluate(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if state != StateEligible {
		return nil, state.Err()
	}

	ticket := &AttemptTicket{StartedAt: now}
	if s.Snapshots == nil {
		return ticket, nil
	}

	ctx, span := tracing.StartAssignmentSpan(ctx, "attempt.snapshot", a.ID)
	defer span.End()

	exercises, err := s.Assignments.ListExercises(ctx, a.ID)
	if err != nil {
		return nil, util.Persistence(err)
	}

	snap := &AttemptSnapshot{
		ID:           uuid.NewString(),
		Token:        token,
		AssignmentID: a.ID,
		StartedAt:    now,
		Exercises:    exercises,
	}
	if err := s.Snapshots.Put(ctx, snap, s.ttl(a)); err != nil {
		// 快照失败时退回到客户端计时
		logger.Log.Warn("Failed to store attempt snapshot", zap.String("assignment_id", a.ID), zap.Error(err))
		return ticket, nil
	}

	span.SetAttributes(tracing.AttemptIDKey.String(snap.ID))
	ticket.AttemptID = snap.ID
	return ticket, nil
}

func (s *AttemptService) ttl(a *model.Assignment) time.Duration {
	if limit := a.TimeLimit(); limit > 0 {
		return limit + s.Grace
	}
	return s.DefaultTTL
}

// Lookup returns the snapshot for id if it exists and belongs to token.
func (s *AttemptService) Lookup(ctx context.Context, id, token string) *AttemptSnapshot {
	if s == nil || s.Snapshots == nil || id == "" {
		return nil
	}
	snap, err := s.Snapshots.Get(ctx, id)
	if err != nil {
		logger.Log.Warn("Failed to load attempt snapshot", zap.String("attempt_id", id), zap.Error(err))
		return nil
	}
	if snap == nil || snap.Token != token {
		return nil
	}
	return snap
}
