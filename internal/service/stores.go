package service

import (
	"context"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/repository"
)

// The stores below are satisfied by the gorm repositories and by in-memory
// fakes in tests.

type AssignmentStore interface {
	FindByToken(ctx context.Context, token string) (*model.Assignment, error)
	FindForTutor(ctx context.Context, id string, tutorID uint) (*model.Assignment, error)
	ListByTutor(ctx context.Context, tutorID uint) ([]repository.AssignmentListRow, error)
	ListExercises(ctx context.Context, assignmentID string) ([]model.Exercise, error)
	ListRecipients(ctx context.Context, assignmentID string) ([]model.Recipient, error)
	IsRecipient(ctx context.Context, assignmentID, studentID string) (bool, error)
	SaveWithChildren(ctx context.Context, a *model.Assignment, exercises []model.Exercise, recipientIDs []string, isNew bool) error
	SetActive(ctx context.Context, id string, tutorID uint, active bool) (int64, error)
	Delete(ctx context.Context, id string, tutorID uint) (int64, error)
}

type StudentStore interface {
	Create(ctx context.Context, s *model.Student) error
	ListByTutor(ctx context.Context, tutorID uint) ([]model.Student, error)
	FindByAuthID(ctx context.Context, tutorID, authID uint) (*model.Student, error)
	FindByEmail(ctx context.Context, tutorID uint, email string) (*model.Student, error)
	FindByIDs(ctx context.Context, tutorID uint, ids []string) ([]model.Student, error)
}

type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	TouchLastLogin(ctx context.Context, id uint) error
}

var (
	_ AssignmentStore = (*repository.AssignmentRepository)(nil)
	_ StudentStore    = (*repository.StudentRepository)(nil)
	_ SubmissionStore = (*repository.SubmissionRepository)(nil)
	_ UserStore       = (*repository.UserRepository)(nil)
)
