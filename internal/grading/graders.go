package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robotics-academy/grading-service/internal/models"
)

// MultipleChoiceGrader expects a JSON array of selected option texts. The
// answer is correct only when the selection equals the set of correct options.
type MultipleChoiceGrader struct{}

func (MultipleChoiceGrader) Type() models.QuestionType { return models.MultipleChoice }

func (MultipleChoiceGrader) Grade(q *models.Question, raw string) (Result, error) {
	var selected []string
	if err := json.Unmarshal([]byte(raw), &selected); err != nil {
		return incorrect(), fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	// JSON null decodes without error and leaves the slice nil
	if selected == nil {
		return incorrect(), fmt.Errorf("%w: expected an array of options", ErrMalformedAnswer)
	}
	return graded(q, sameSet(selected, q.CorrectOptionTexts())), nil
}

func sameSet(a, b []string) bool {
	left := make(map[string]struct{}, len(a))
	for _, s := range a {
		left[s] = struct{}{}
	}
	right := make(map[string]struct{}, len(b))
	for _, s := range b {
		right[s] = struct{}{}
	}
	if len(left) != len(right) {
		return false
	}
	for s := range left {
		if _, ok := right[s]; !ok {
			return false
		}
	}
	return true
}

// TrueFalseGrader compares against the canonical "true"/"false" answer
// ignoring case and surrounding whitespace.
type TrueFalseGrader struct{}

func (TrueFalseGrader) Type() models.QuestionType { return models.TrueFalse }

func (TrueFalseGrader) Grade(q *models.Question, raw string) (Result, error) {
	if q.CorrectAnswer == nil {
		return incorrect(), ErrMissingAnswerKey
	}
	return graded(q, normalize(raw) == normalize(*q.CorrectAnswer)), nil
}

// ShortAnswerGrader accepts any of the comma separated answers in the key.
type ShortAnswerGrader struct{}

func (ShortAnswerGrader) Type() models.QuestionType { return models.ShortAnswer }

func (ShortAnswerGrader) Grade(q *models.Question, raw string) (Result, error) {
	if q.CorrectAnswer == nil {
		return incorrect(), ErrMissingAnswerKey
	}
	answer := normalize(raw)
	for _, accepted := range strings.Split(*q.CorrectAnswer, ",") {
		if normalize(accepted) == answer {
			return correct(q), nil
		}
	}
	return incorrect(), nil
}

// EssayGrader never awards points; essays wait for manual review.
type EssayGrader struct{}

func (EssayGrader) Type() models.QuestionType { return models.Essay }

func (EssayGrader) Grade(*models.Question, string) (Result, error) {
	return Result{}, nil
}
