package service

import (
	"context"
	"errors"
	"testing"
	"tutorhub_backend/internal/util"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := NewIdentityService(f.students)

	cases := []struct {
		name  string
		tutor uint
		auth  *uint
		email string
		want  string
	}{
		{"auth link", tutorID, ptr(uint(100)), "", "stu-1"},
		{"auth link beats email", tutorID, ptr(uint(100)), "ben@example.com", "stu-1"},
		{"unknown auth falls back to email", tutorID, ptr(uint(555)), "ben@example.com", "stu-2"},
		{"email is case-insensitive", tutorID, nil, "  ANA@example.COM ", "stu-1"},
		{"no match is guest", tutorID, nil, "nobody@example.com", ""},
		{"blank email is guest", tutorID, nil, "", ""},
		{"other tutor's roster is ignored", tutorID, nil, "x@example.com", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := svc.Resolve(ctx, tc.tutor, tc.auth, tc.email)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			got := ""
			if st != nil {
				got = st.ID
			}
			if got != tc.want {
				t.Fatalf("student = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveDoesNotCreateStudents(t *testing.T) {
	f := newFixture()
	before := len(f.students.list)
	if _, err := NewIdentityService(f.students).Resolve(context.Background(), tutorID, nil, "new@example.com"); err != nil {
		t.Fatal(err)
	}
	if len(f.students.list) != before {
		t.Fatal("roster changed")
	}
}

func TestResolveStoreFailure(t *testing.T) {
	f := newFixture()
	f.students.failFind = true
	_, err := NewIdentityService(f.students).Resolve(context.Background(), tutorID, nil, "ana@example.com")
	if !errors.Is(err, util.ErrPersistence) {
		t.Fatalf("err = %v, want persistence error", err)
	}
}
