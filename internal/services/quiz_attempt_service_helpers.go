package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/robotics-academy/grading-service/internal/cache"
	"github.com/robotics-academy/grading-service/internal/events"
	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/pkg/monitoring"
)

func (s *quizAttemptService) validateSubmit(attemptID uint, req *SubmitQuizAttemptRequest) error {
	if attemptID == 0 {
		return NewValidationError("attempt_id", "is required", attemptID)
	}
	if req == nil {
		return NewValidationError("answers", "is required", nil)
	}
	return s.validator.Validate(req)
}

// afterSubmit runs once the graded attempt is committed. Nothing here may fail
// the submission.
func (s *quizAttemptService) afterSubmit(ctx context.Context, quiz *models.Quiz, attempt *models.QuizAttempt) {
	cache.InvalidateGradebook(ctx, s.cache, quiz.CourseID)

	event := events.NewEvent(events.QuizAttemptGraded, events.QuizAttemptGradedData{
		AttemptID:    attempt.ID,
		QuizID:       quiz.ID,
		CourseID:     quiz.CourseID,
		StudentID:    attempt.StudentID,
		Score:        *attempt.Score,
		PointsEarned: attempt.PointsEarned,
		PointsTotal:  attempt.PointsTotal,
		IsPassing:    *attempt.IsPassing,
		SubmittedAt:  *attempt.SubmittedAt,
		TimeSpent:    attempt.TimeSpent,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish attempt graded event",
			"attempt_id", attempt.ID,
			"event_id", event.ID,
			"error", err)
	}
}

// decodeAnswers turns the request payload into raw answers keyed by question
// id. JSON strings are unquoted; any other JSON value (an array of option
// texts, a bare boolean) is kept as its JSON text. Keys that are not question
// ids are dropped.
func decodeAnswers(payload map[string]json.RawMessage) map[uint]string {
	answers := make(map[uint]string, len(payload))
	for key, raw := range payload {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 {
			continue
		}
		answers[uint(id)] = rawAnswer(raw)
	}
	return answers
}

func rawAnswer(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

// questionViews strips answer keys unless reveal is set
func questionViews(questions []models.Question, reveal bool) []QuestionView {
	views := make([]QuestionView, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		view := QuestionView{
			ID:     q.ID,
			Type:   q.Type,
			Text:   q.Text,
			Points: q.Points,
			Order:  q.Order,
		}
		for _, opt := range q.Options {
			view.Options = append(view.Options, opt.Text)
		}
		if reveal {
			if q.Type == models.MultipleChoice {
				view.CorrectOptions = q.CorrectOptionTexts()
			} else {
				view.CorrectAnswer = q.CorrectAnswer
			}
		}
		views = append(views, view)
	}
	return views
}

func submissionOutcome(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeGraded
	case errors.Is(err, ErrAttemptAlreadySubmitted):
		return monitoring.OutcomeAlreadySubmitted
	case errors.Is(err, ErrValidationFailed),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrQuizNotFound):
		return monitoring.OutcomeRejected
	default:
		return monitoring.OutcomeError
	}
}
