package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/util"
)

func TestViewHidesAnswers(t *testing.T) {
	f := newFixture()
	f.assignments.exercises["asg-1"][0].SetOptions([]string{"Paris", "Rome"})

	v, err := f.attempts.View(context.Background(), testToken)
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if v.State != StateEligible || v.Assignment == nil {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.Assignment.ID != "asg-1" || v.Assignment.Title != "Unit 3 quiz" {
		t.Fatalf("metadata not copied: %+v", v.Assignment)
	}
	if len(v.Assignment.Items) != 2 || len(v.Assignment.Items[0].Options) != 2 {
		t.Fatalf("items = %+v", v.Assignment.Items)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "correctAnswer") {
		t.Fatalf("answer key leaked: %s", raw)
	}
}

func TestViewReportsState(t *testing.T) {
	f := newFixture()
	f.update(func(a *model.Assignment) { a.IsActive = false })

	v, err := f.attempts.View(context.Background(), testToken)
	if err != nil {
		t.Fatal(err)
	}
	if v.State != StateInactive || v.Assignment != nil {
		t.Fatalf("view = %+v", v)
	}

	v, err = f.attempts.View(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if v.State != StateNotFound {
		t.Fatalf("state = %s", v.State)
	}
}

func TestStartSnapshotTTL(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ticket, err := f.attempts.Start(ctx, testToken)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.snapshots.ttls[ticket.AttemptID]; got != 24*time.Hour {
		t.Fatalf("untimed ttl = %v", got)
	}

	f.update(func(a *model.Assignment) { a.TimeLimitMinutes = ptr(30) })
	ticket, err = f.attempts.Start(ctx, testToken)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.snapshots.ttls[ticket.AttemptID]; got != 40*time.Minute {
		t.Fatalf("timed ttl = %v", got)
	}
}

func TestStartRejectsIneligible(t *testing.T) {
	f := newFixture()
	f.update(func(a *model.Assignment) { a.DueDate = ptr(f.now.Add(-time.Hour)) })

	_, err := f.attempts.Start(context.Background(), testToken)
	if !errors.Is(err, util.ErrWindowExpired) {
		t.Fatalf("err = %v, want window expired", err)
	}
	if len(f.snapshots.m) != 0 {
		t.Fatal("snapshot stored for an expired assignment")
	}
}

func TestStartWithoutSnapshots(t *testing.T) {
	f := newFixture()
	f.attempts.Snapshots = nil

	ticket, err := f.attempts.Start(context.Background(), testToken)
	if err != nil {
		t.Fatal(err)
	}
	if ticket.AttemptID != "" || !ticket.StartedAt.Equal(f.now) {
		t.Fatalf("ticket = %+v", ticket)
	}
}

func TestLookupIgnoresOtherToken(t *testing.T) {
	f := newFixture()
	ticket, err := f.attempts.Start(context.Background(), testToken)
	if err != nil {
		t.Fatal(err)
	}
	if f.attempts.Lookup(context.Background(), ticket.AttemptID, "another-token") != nil {
		t.Fatal("snapshot returned for a different token")
	}
	if f.attempts.Lookup(context.Background(), ticket.AttemptID, testToken) == nil {
		t.Fatal("snapshot not found")
	}
}
