package repository

import (
	"context"
	"tutorhub_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *StudentRepository) ListByTutor(ctx context.Context, tutorID uint) ([]model.Student, error) {
	var ss []model.Student
	err := r.DB.WithContext(ctx).Where("tutor_id = ?", tutorID).Order("full_name ASC").Find(&ss).Error
	return ss, err
}

func (r *StudentRepository) FindByAuthID(ctx context.Context, tutorID, authID uint) (*model.Student, error) {
	var s model.Student
	err := r.DB.WithContext(ctx).Where("tutor_id = ? AND auth_id = ?", tutorID, authID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByEmail matches case-insensitively; email must already be lowercased.
func (r *StudentRepository) FindByEmail(ctx context.Context, tutorID uint, email string) (*model.Student, error) {
	var s model.Student
	err := r.DB.WithContext(ctx).
		Where("tutor_id = ? AND LOWER(email) = ?", tutorID, email).
		Order("created_at ASC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StudentRepository) FindByIDs(ctx context.Context, tutorID uint, ids []string) ([]model.Student, error) {
	var ss []model.Student
	if len(ids) == 0 {
		return ss, nil
	}
	err := r.DB.WithContext(ctx).Where("tutor_id = ? AND id IN ?", tutorID, ids).Find(&ss).Error
	return ss, err
}
