package model

type StudentStatus string

const (
	StudentActive   StudentStatus = "active"
	StudentInactive StudentStatus = "inactive"
	StudentTrial    StudentStatus = "trial"
)

// Student is a roster entry owned by one tutor. AuthID links it to a login
// account when the student has one.
// swagger:model Student
type Student struct {
	UUIDBase
	TutorID  uint          `gorm:"index;not null" json:"tutorId"`
	AuthID   *uint         `gorm:"index" json:"authId,omitempty"`
	FullName string        `gorm:"size:191;not null" json:"fullName"`
	Email    *string       `gorm:"size:191;index" json:"email,omitempty"`
	Status   StudentStatus `gorm:"size:20;default:'active'" json:"status"`
}

func (Student) TableName() string {
	return "students"
}
