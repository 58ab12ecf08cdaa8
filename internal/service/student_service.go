package service

import (
	"context"
	"strings"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/util"
)

type StudentReq struct {
	FullName string              `json:"fullName" binding:"required"`
	Email    string              `json:"email"`
	AuthID   *uint               `json:"authId"`
	Status   model.StudentStatus `json:"status"`
}

// StudentService manages the tutor's roster. Recipients and identity
// resolution both read from it.
type StudentService struct {
	Students StudentStore
}

func NewStudentService(students StudentStore) *StudentService {
	return &StudentService{Students: students}
}

func (s *StudentService) List(ctx context.Context, tutorID uint) ([]model.Student, error) {
	list, err := s.Students.ListByTutor(ctx, tutorID)
	if err != nil {
		return nil, util.Persistence(err)
	}
	return list, nil
}

func (s *StudentService) Create(ctx context.Context, tutorID uint, req StudentReq) (*model.Student, error) {
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		return nil, util.Validationf("fullName is required")
	}

	status := req.Status
	switch status {
	case "":
		status = model.StudentActive
	case model.StudentActive, model.StudentInactive, model.StudentTrial:
	default:
		return nil, util.Validationf("unknown student status %q", status)
	}

	st := &model.Student{
		TutorID:  tutorID,
		AuthID:   req.AuthID,
		FullName: name,
		Email:    util.StringPtr(req.Email),
		Status:   status,
	}
	if err := s.Students.Create(ctx, st); err != nil {
		return nil, util.Persistence(err)
	}
	return st, nil
}
