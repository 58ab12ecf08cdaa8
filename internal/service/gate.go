package service

import (
	"context"
	"errors"
	"time"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/util"

	"gorm.io/gorm"
)

// GateState is the eligibility of a public token at a given instant.
type GateState string

const (
	StateNotFound GateState = "not_found"
	StateInactive GateState = "inactive"
	StateExpired  GateState = "expired"
	StateEligible GateState = "eligible"
)

// Err returns the sentinel error for a non-eligible state.
func (s GateState) Err() error {
	switch s {
	case StateNotFound:
		return util.ErrAssignmentNotFound
	case StateInactive:
		return util.ErrAssignmentInactive
	case StateExpired:
		return util.ErrWindowExpired
	}
	return nil
}

// Gate decides whether a public token may be viewed or submitted to. It is
// evaluated when the link is opened and again, authoritatively, on submit.
type Gate struct {
	Assignments AssignmentStore
}

func NewGate(assignments AssignmentStore) *Gate {
	return &Gate{Assignments: assignments}
}

// Evaluate looks the token up and checks the kill switch and both date bounds.
// The assignment is returned for every state except not_found.
func (g *Gate) Evaluate(ctx context.Context, token string, now time.Time) (GateState, *model.Assignment, error) {
	a, err := g.Assignments.FindByToken(ctx, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StateNotFound, nil, nil
	}
	if err != nil {
		return "", nil, util.Persistence(err)
	}

	if !a.IsActive {
		return StateInactive, a, nil
	}
	if windowClosed(a, now) {
		return StateExpired, a, nil
	}
	return StateEligible, a, nil
}

// windowClosed enforces due_date and available_until independently.
func windowClosed(a *model.Assignment, now time.Time) bool {
	if a.AvailableUntil != nil && now.After(*a.AvailableUntil) {
		return true
	}
	if a.DueDate != nil && now.After(*a.DueDate) {
		return true
	}
	return false
}

// Authorize is the submit-time check: Evaluate must yield eligible and the
// attempt must be within the time limit.
func (g *Gate) Authorize(ctx context.Context, token string, startedAt *time.Time, now time.Time) (*model.Assignment, error) {
	state, a, err := g.Evaluate(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if state != StateEligible {
		return nil, state.Err()
	}
	if err := CheckTimeLimit(a, startedAt, now); err != nil {
		return nil, err
	}
	return a, nil
}

// CheckTimeLimit rejects attempts that ran past the limit. Finishing exactly at
// the limit is accepted.
func CheckTimeLimit(a *model.Assignment, startedAt *time.Time, now time.Time) error {
	limit := a.TimeLimit()
	if limit == 0 {
		return nil
	}
	if startedAt == nil {
		return util.ErrMissingAttemptStart
	}
	if now.Sub(*startedAt) > limit {
		return util.ErrTimeLimitExceeded
	}
	return nil
}

// CheckAudience enforces restricted assignments: the taker must resolve to a
// student and that student must be a recipient. Guests never pass.
func (g *Gate) CheckAudience(ctx context.Context, a *model.Assignment, student *model.Student) error {
	if a.Audience != model.AudienceRestricted {
		return nil
	}
	if student == nil {
		return util.ErrAudienceRestricted
	}
	ok, err := g.Assignments.IsRecipient(ctx, a.ID, student.ID)
	if err != nil {
		return util.Persistence(err)
	}
	if !ok {
		return util.ErrAudienceRestricted
	}
	return nil
}
