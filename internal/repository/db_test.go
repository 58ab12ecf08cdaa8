package repository

import (
	"testing"
	"time"
	"tutorhub_backend/internal/model"
	"tutorhub_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database with the production schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// 单连接：每个连接都是独立的内存库
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func fillBlank(question, answer string) model.Exercise {
	return model.Exercise{Type: model.ExerciseFillBlank, Question: question, CorrectAnswer: answer, Points: 1}
}

func countWhere(t *testing.T, db *gorm.DB, m any, assignmentID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(m).Where("assignment_id = ?", assignmentID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func submissionFor(assignmentID string, studentID *string, at time.Time) *model.Submission {
	return &model.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		StudentName:  "Taker",
		Answers:      datatypes.NewJSONType(map[string]string{"e1": "a"}),
		Score:        1,
		MaxScore:     2,
		SubmittedAt:  at,
	}
}
