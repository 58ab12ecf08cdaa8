package repository

import (
	"context"
	"tutorhub_backend/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Create inserts the submission. When it belongs to a recipient of the
// assignment, the recipient row is marked completed in the same transaction.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		if s.StudentID == nil {
			return nil
		}
		return tx.Model(&model.Recipient{}).
			Where("assignment_id = ? AND student_id = ?", s.AssignmentID, *s.StudentID).
			Update("status", model.RecipientCompleted).Error
	})
}

func (r *SubmissionRepository) ListByAssignment(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	var subs []model.Submission
	err := r.DB.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}
