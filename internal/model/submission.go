package model

import (
	"time"

	"gorm.io/datatypes"
)

// Submission is one immutable, graded attempt. StudentName and StudentEmail keep
// what the taker typed even when StudentID resolves to a roster entry.
// swagger:model Submission
type Submission struct {
	UUIDBase
	AssignmentID      string                               `gorm:"index;type:varchar(36);not null" json:"assignmentId"`
	StudentID         *string                              `gorm:"index;type:varchar(36)" json:"studentId,omitempty"`
	StudentName       string                               `gorm:"size:191;not null" json:"studentName"`
	StudentEmail      *string                              `gorm:"size:191" json:"studentEmail,omitempty"`
	Answers           datatypes.JSONType[map[string]string] `json:"answers"`
	Score             int                                  `gorm:"not null" json:"score"`
	MaxScore          int                                  `gorm:"not null" json:"maxScore"`
	IsGuestSubmission bool                                 `gorm:"not null" json:"isGuestSubmission"`
	AttemptID         *string                              `gorm:"type:varchar(36)" json:"attemptId,omitempty"`
	StartedAt         *time.Time                           `json:"startedAt,omitempty"`
	SubmittedAt       time.Time                            `gorm:"index;not null" json:"submittedAt"`
}

func (Submission) TableName() string {
	return "assignment_submissions"
}
