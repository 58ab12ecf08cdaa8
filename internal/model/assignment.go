package model

import (
	"time"
)

type Audience string

const (
	// AudienceBroadcast opens the assignment to every active or trial student of the tutor, and to guests.
	AudienceBroadcast Audience = "broadcast"
	// AudienceRestricted limits the assignment to the explicit recipient set.
	AudienceRestricted Audience = "restricted"
)

// ParseAudience accepts the canonical values and the legacy names used by older clients.
func ParseAudience(s string) (Audience, bool) {
	switch s {
	case "", string(AudienceBroadcast), "all_active_students":
		return AudienceBroadcast, true
	case string(AudienceRestricted), "selected_students":
		return AudienceRestricted, true
	}
	return "", false
}

// swagger:model Assignment
type Assignment struct {
	UUIDBase
	TutorID          uint       `gorm:"index;not null" json:"tutorId"`
	LessonID         *string    `gorm:"type:varchar(36)" json:"lessonId,omitempty"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	PublicToken      string     `gorm:"size:64;uniqueIndex;not null" json:"publicToken"`
	IsActive         bool       `gorm:"not null" json:"isActive"`
	Audience         Audience   `gorm:"size:20;not null" json:"audience"`
	TimeLimitMinutes *int       `json:"timeLimitMinutes,omitempty"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	AvailableUntil   *time.Time `json:"availableUntil,omitempty"`

	Exercises  []Exercise  `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"-"`
	Recipients []Recipient `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// TimeLimit returns the configured limit, or zero when the assignment is untimed.
func (a *Assignment) TimeLimit() time.Duration {
	if a.TimeLimitMinutes == nil || *a.TimeLimitMinutes <= 0 {
		return 0
	}
	return time.Duration(*a.TimeLimitMinutes) * time.Minute
}

type RecipientStatus string

const (
	RecipientAssigned  RecipientStatus = "assigned"
	RecipientCompleted RecipientStatus = "completed"
)

// Recipient marks a student as eligible for a restricted assignment.
// swagger:model Recipient
type Recipient struct {
	AssignmentID string          `gorm:"primaryKey;type:varchar(36)" json:"assignmentId"`
	StudentID    string          `gorm:"primaryKey;type:varchar(36)" json:"studentId"`
	Status       RecipientStatus `gorm:"size:20;not null" json:"status"`
	AssignedAt   time.Time       `json:"assignedAt"`
}

func (Recipient) TableName() string {
	return "assignment_recipients"
}
