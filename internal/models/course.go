package models

import (
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Code         string `json:"code" gorm:"uniqueIndex;not null;size:50"`
	Title        string `json:"title" gorm:"not null;size:200"`
	InstructorID string `json:"instructor_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsManagedBy reports whether the user may see and export the course gradebook
func (c *Course) IsManagedBy(userID string, role UserRole) bool {
	return role == RoleAdmin || c.InstructorID == userID
}

type Enrollment struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CourseID   uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_course_student"`
	StudentID  string    `json:"student_id" gorm:"not null;uniqueIndex:idx_course_student;size:255"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
}
