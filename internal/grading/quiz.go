package grading

import (
	"math"
	"time"

	"github.com/robotics-academy/grading-service/internal/models"
)

// QuestionFailure records a question that could not be graded normally and
// was scored as incorrect instead.
type QuestionFailure struct {
	QuestionID uint
	Type       models.QuestionType
	Err        error
}

// Outcome is the graded form of a whole attempt
type Outcome struct {
	Answers      []models.QuizAnswer
	PointsEarned float64
	PointsTotal  float64
	Percentage   float64
	IsPassing    bool
	Failures     []QuestionFailure
}

// GradeQuiz grades every question of the quiz against answers, keyed by
// question id. Answers for questions outside the quiz are ignored.
func (r *Registry) GradeQuiz(quiz *models.Quiz, attemptID uint, answers map[uint]string) *Outcome {
	out := &Outcome{Answers: make([]models.QuizAnswer, 0, len(quiz.Questions))}

	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		out.PointsTotal += q.Points

		raw := answers[q.ID]
		res, err := r.Grade(q, raw)
		if err != nil {
			out.Failures = append(out.Failures, QuestionFailure{QuestionID: q.ID, Type: q.Type, Err: err})
		}

		out.PointsEarned += res.PointsEarned
		out.Answers = append(out.Answers, models.QuizAnswer{
			AttemptID:    attemptID,
			QuestionID:   q.ID,
			Answer:       raw,
			IsCorrect:    res.IsCorrect,
			PointsEarned: res.PointsEarned,
		})
	}

	out.Percentage = Percentage(out.PointsEarned, out.PointsTotal)
	out.IsPassing = out.Percentage >= quiz.PassingThreshold()
	return out
}

// Percentage is earned/total*100, and 0 when nothing can be earned
func Percentage(earned, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return earned / total * 100
}

// ElapsedSeconds is the whole number of seconds between start and end, never negative
func ElapsedSeconds(start, end time.Time) int {
	secs := math.Floor(end.Sub(start).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}

// LetterGrade maps a percentage onto the academy's letter scale
func LetterGrade(percentage float64) string {
	switch {
	case percentage >= 97:
		return "A+"
	case percentage >= 93:
		return "A"
	case percentage >= 90:
		return "A-"
	case percentage >= 87:
		return "B+"
	case percentage >= 83:
		return "B"
	case percentage >= 80:
		return "B-"
	case percentage >= 77:
		return "C+"
	case percentage >= 73:
		return "C"
	case percentage >= 70:
		return "C-"
	case percentage >= 67:
		return "D+"
	case percentage >= 63:
		return "D"
	case percentage >= 60:
		return "D-"
	default:
		return "F"
	}
}
