// Package grading scores quiz answers. Each question type has its own Grader;
// Registry dispatches on the question type and GradeQuiz aggregates a whole
// attempt without touching storage.
package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robotics-academy/grading-service/internal/models"
)

var (
	ErrMalformedAnswer     = errors.New("malformed answer payload")
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrMissingAnswerKey    = errors.New("question has no answer key")
)

// Result is the outcome of grading one answer. IsCorrect is nil for answers
// that need manual review.
type Result struct {
	IsCorrect    *bool
	PointsEarned float64
}

// Grader grades one question type
type Grader interface {
	Type() models.QuestionType
	Grade(q *models.Question, raw string) (Result, error)
}

// Registry maps question types to their graders
type Registry struct {
	graders map[models.QuestionType]Grader
}

// NewRegistry builds a registry from the given graders. Later graders win
// over earlier ones for the same type.
func NewRegistry(graders ...Grader) *Registry {
	r := &Registry{graders: make(map[models.QuestionType]Grader, len(graders))}
	for _, g := range graders {
		r.graders[g.Type()] = g
	}
	return r
}

// DefaultRegistry returns a registry with a grader for every supported type
func DefaultRegistry() *Registry {
	return NewRegistry(
		MultipleChoiceGrader{},
		TrueFalseGrader{},
		ShortAnswerGrader{},
		EssayGrader{},
	)
}

func (r *Registry) For(t models.QuestionType) (Grader, bool) {
	g, ok := r.graders[t]
	return g, ok
}

// Grade grades a single answer. Errors always come with an incorrect result so
// callers can record the failure and move on.
func (r *Registry) Grade(q *models.Question, raw string) (Result, error) {
	g, ok := r.For(q.Type)
	if !ok {
		return incorrect(), fmt.Errorf("%w: %q", ErrUnknownQuestionType, q.Type)
	}
	if isBlank(raw) {
		return unanswered(q), nil
	}

	res, err := g.Grade(q, raw)
	if err != nil {
		return incorrect(), err
	}
	if res.PointsEarned > q.Points {
		res.PointsEarned = q.Points
	}
	if res.PointsEarned < 0 {
		res.PointsEarned = 0
	}
	return res, nil
}

// ===== RESULT HELPERS =====

func boolPtr(b bool) *bool {
	return &b
}

func correct(q *models.Question) Result {
	return Result{IsCorrect: boolPtr(true), PointsEarned: q.Points}
}

func incorrect() Result {
	return Result{IsCorrect: boolPtr(false)}
}

func unanswered(q *models.Question) Result {
	if q.Type == models.Essay {
		return Result{}
	}
	return incorrect()
}

func graded(q *models.Question, ok bool) Result {
	if ok {
		return correct(q)
	}
	return incorrect()
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
