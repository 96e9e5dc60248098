package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Essay          QuestionType = "essay"
)

// QuestionTypes lists every type the service knows how to grade.
var QuestionTypes = []QuestionType{MultipleChoice, TrueFalse, ShortAnswer, Essay}

func (t QuestionType) IsValid() bool {
	for _, known := range QuestionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// QuestionOption is one choice of a multiple choice question
type QuestionOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quiz_id" gorm:"not null;index"`
	Type   QuestionType `json:"type" gorm:"not null;size:32"`
	Text   string       `json:"text" gorm:"type:text;not null"`
	Points float64      `json:"points" gorm:"not null;default:1"`
	Order  int          `json:"order" gorm:"not null;default:0"`

	// multiple_choice only
	Options datatypes.JSONSlice[QuestionOption] `json:"options,omitempty" gorm:"type:jsonb"`
	// true_false: "true"/"false"; short_answer: comma separated accepted answers
	CorrectAnswer *string `json:"correct_answer,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "quiz_questions"
}

// CorrectOptionTexts returns the texts of the options flagged correct
func (q *Question) CorrectOptionTexts() []string {
	texts := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.IsCorrect {
			texts = append(texts, opt.Text)
		}
	}
	return texts
}
