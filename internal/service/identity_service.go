package service

import (
	"context"
	"errors"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/internal/util"

	"gorm.io/gorm"
)

// IdentityService links a taker to a roster student of the assignment's tutor.
// It never creates students.
type IdentityService struct {
	Students StudentStore
}

func NewIdentityService(students StudentStore) *IdentityService {
	return &IdentityService{Students: students}
}

// Resolve tries the authenticated account link first, then the declared email
// (case-insensitive). A nil student with a nil error means guest.
func (s *IdentityService) Resolve(ctx context.Context, tutorID uint, authUserID *uint, email string) (*model.Student, error) {
	if authUserID != nil {
		st, err := s.Students.FindByAuthID(ctx, tutorID, *authUserID)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.Persistence(err)
		}
	}

	email = util.NormalizeEmail(email)
	if email == "" {
		return nil, nil
	}

	st, err := s.Students.FindByEmail(ctx, tutorID, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, util.Persistence(err)
	}
	return st, nil
}
