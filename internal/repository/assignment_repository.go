package repository

import (
	"context"
	"time"
	"tutorhub_backend/internal/model"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func (r *AssignmentRepository) FindByToken(ctx context.Context, token string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.WithContext(ctx).Where("public_token = ?", token).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) FindForTutor(ctx context.Context, id string, tutorID uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.WithContext(ctx).Where("id = ? AND tutor_id = ?", id, tutorID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type AssignmentListRow struct {
	model.Assignment
	ExerciseCount   int `json:"exerciseCount"`
	SubmissionCount int `json:"submissionCount"`
}

func (r *AssignmentRepository) ListByTutor(ctx context.Context, tutorID uint) ([]AssignmentListRow, error) {
	var rows []AssignmentListRow
	err := r.DB.WithContext(ctx).Table("assignments a").
		Select("a.*, "+
			"(SELECT COUNT(*) FROM assignment_exercises e WHERE e.assignment_id = a.id) AS exercise_count, "+
			"(SELECT COUNT(*) FROM assignment_submissions s WHERE s.assignment_id = a.id) AS submission_count").
		Where("a.tutor_id = ?", tutorID).
		Order("a.updated_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *AssignmentRepository) ListExercises(ctx context.Context, assignmentID string) ([]model.Exercise, error) {
	var exs []model.Exercise
	err := r.DB.WithContext(ctx).
		Where("assignment_id = ?", assignmentID).
		Order("order_index ASC").
		Find(&exs).Error
	return exs, err
}

func (r *AssignmentRepository) ListRecipients(ctx context.Context, assignmentID string) ([]model.Recipient, error) {
	var rs []model.Recipient
	err := r.DB.WithContext(ctx).Where("assignment_id = ?", assignmentID).Find(&rs).Error
	return rs, err
}

func (r *AssignmentRepository) IsRecipient(ctx context.Context, assignmentID, studentID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Recipient{}).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		Count(&count).Error
	return count > 0, err
}

// SaveWithChildren writes the assignment row and replaces its exercise and
// recipient sets in one transaction. Exercises are numbered in slice order.
func (r *AssignmentRepository) SaveWithChildren(ctx context.Context, a *model.Assignment, exercises []model.Exercise, recipientIDs []string, isNew bool) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if isNew {
			if err := tx.Create(a).Error; err != nil {
				return err
			}
		} else {
			err := tx.Model(a).
				Select("lesson_id", "title", "description", "is_active", "audience",
					"time_limit_minutes", "due_date", "available_until", "updated_at").
				Updates(a).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Where("assignment_id = ?", a.ID).Delete(&model.Exercise{}).Error; err != nil {
			return err
		}
		if len(exercises) > 0 {
			for i := range exercises {
				exercises[i].ID = ""
				exercises[i].AssignmentID = a.ID
				exercises[i].OrderIndex = i
			}
			if err := tx.Create(&exercises).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("assignment_id = ?", a.ID).Delete(&model.Recipient{}).Error; err != nil {
			return err
		}
		if len(recipientIDs) > 0 {
			now := time.Now()
			rs := make([]model.Recipient, 0, len(recipientIDs))
			for _, sid := range recipientIDs {
				rs = append(rs, model.Recipient{
					AssignmentID: a.ID,
					StudentID:    sid,
					Status:       model.RecipientAssigned,
					AssignedAt:   now,
				})
			}
			if err := tx.Create(&rs).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AssignmentRepository) SetActive(ctx context.Context, id string, tutorID uint, active bool) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&model.Assignment{}).
		Where("id = ? AND tutor_id = ?", id, tutorID).
		Update("is_active", active)
	return res.RowsAffected, res.Error
}

// Delete removes the assignment with its exercises, recipients and submissions.
func (r *AssignmentRepository) Delete(ctx context.Context, id string, tutorID uint) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a model.Assignment
		if err := tx.Where("id = ? AND tutor_id = ?", id, tutorID).First(&a).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", id).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", id).Delete(&model.Recipient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("assignment_id = ?", id).Delete(&model.Exercise{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Assignment{}, "id = ?", id)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}
