package validator

import "encoding/json"

// StartQuizAttemptRequest opens a new attempt on a quiz
type StartQuizAttemptRequest struct {
	QuizID uint `json:"quiz_id" validate:"required,gt=0"`
}

// SubmitQuizAttemptRequest carries answers keyed by question id. Values are
// JSON strings, or raw JSON such as an array of option texts for multiple
// choice. An empty object submits nothing; a missing one is rejected.
type SubmitQuizAttemptRequest struct {
	Answers map[string]json.RawMessage `json:"answers" validate:"required"`
}

// GradebookQuery holds the optional query parameters of gradebook reads
type GradebookQuery struct {
	EmptyGradePolicy string `form:"empty_grade_policy" validate:"omitempty,empty_grade_policy"`
}
