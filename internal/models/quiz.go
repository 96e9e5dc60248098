package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	ID                 uint     `json:"id" gorm:"primaryKey"`
	CourseID           uint     `json:"course_id" gorm:"not null;index"`
	Title              string   `json:"title" gorm:"not null;size:200"`
	Description        *string  `json:"description" gorm:"type:text"`
	PassingScore       *float64 `json:"passing_score"` // percentage, nil means every submission passes
	ShowCorrectAnswers bool     `json:"show_correct_answers" gorm:"default:false"`
	TimeLimit          *int     `json:"time_limit"` // minutes, informational only

	CreatedAt time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Course    *Course    `json:"course,omitempty" gorm:"foreignKey:CourseID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// PassingThreshold returns the passing percentage, treating an unset threshold as 0
func (q *Quiz) PassingThreshold() float64 {
	if q.PassingScore == nil {
		return 0
	}
	return *q.PassingScore
}
