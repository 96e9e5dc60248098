package grading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/robotics-academy/grading-service/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func mcQuestion(id uint, points float64, options ...models.QuestionOption) models.Question {
	return models.Question{
		ID:      id,
		Type:    models.MultipleChoice,
		Points:  points,
		Options: datatypes.JSONSlice[models.QuestionOption](options),
	}
}

func keyedQuestion(id uint, qt models.QuestionType, points float64, key string) models.Question {
	return models.Question{ID: id, Type: qt, Points: points, CorrectAnswer: strPtr(key)}
}

func TestMultipleChoiceGrader(t *testing.T) {
	q := mcQuestion(1, 10,
		models.QuestionOption{Text: "A", IsCorrect: true},
		models.QuestionOption{Text: "B"},
		models.QuestionOption{Text: "C", IsCorrect: true},
	)
	registry := DefaultRegistry()

	tests := []struct {
		name       string
		raw        string
		wantOK     bool
		wantPoints float64
		wantErr    error
	}{
		{name: "exact set", raw: `["A","C"]`, wantOK: true, wantPoints: 10},
		{name: "order does not matter", raw: `["C","A"]`, wantOK: true, wantPoints: 10},
		{name: "duplicates collapse", raw: `["A","C","A"]`, wantOK: true, wantPoints: 10},
		{name: "proper subset", raw: `["A"]`, wantOK: false},
		{name: "superset", raw: `["A","B","C"]`, wantOK: false},
		{name: "empty selection", raw: `[]`, wantOK: false},
		{name: "malformed payload", raw: `A`, wantOK: false, wantErr: ErrMalformedAnswer},
		{name: "null payload", raw: `null`, wantOK: false, wantErr: ErrMalformedAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := registry.Grade(&q, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			require.NotNil(t, res.IsCorrect)
			assert.Equal(t, tt.wantOK, *res.IsCorrect)
			assert.Equal(t, tt.wantPoints, res.PointsEarned)
		})
	}
}

func TestMultipleChoiceGrader_NoCorrectOption(t *testing.T) {
	q := mcQuestion(1, 10,
		models.QuestionOption{Text: "A"},
		models.QuestionOption{Text: "B"},
	)
	registry := DefaultRegistry()

	res, err := registry.Grade(&q, `null`)
	assert.ErrorIs(t, err, ErrMalformedAnswer)
	require.NotNil(t, res.IsCorrect)
	assert.False(t, *res.IsCorrect)
	assert.Zero(t, res.PointsEarned)

	res, err = registry.Grade(&q, `[]`)
	require.NoError(t, err)
	assert.True(t, *res.IsCorrect)
	assert.Equal(t, 10.0, res.PointsEarned)
}

func TestTrueFalseGrader(t *testing.T) {
	q := keyedQuestion(2, models.TrueFalse, 5, "true")
	registry := DefaultRegistry()

	for raw, want := range map[string]bool{
		"true":     true,
		" True ":   true,
		"TRUE":     true,
		"false":    false,
		"yes":      false,
		"\ttrue\n": true,
	} {
		res, err := registry.Grade(&q, raw)
		require.NoError(t, err)
		require.NotNil(t, res.IsCorrect, raw)
		assert.Equal(t, want, *res.IsCorrect, raw)
	}
}

func TestTrueFalseGrader_MissingKey(t *testing.T) {
	q := models.Question{ID: 3, Type: models.TrueFalse, Points: 5}

	res, err := DefaultRegistry().Grade(&q, "true")
	assert.ErrorIs(t, err, ErrMissingAnswerKey)
	assert.False(t, *res.IsCorrect)
	assert.Zero(t, res.PointsEarned)
}

func TestShortAnswerGrader(t *testing.T) {
	q := keyedQuestion(4, models.ShortAnswer, 4, "Servo, servo motor ,SERVOMOTOR")
	registry := DefaultRegistry()

	tests := []struct {
		raw  string
		want bool
	}{
		{"servo", true},
		{"  Servo Motor ", true},
		{"servomotor", true},
		{"stepper", false},
		{"servo,stepper", false},
	}
	for _, tt := range tests {
		res, err := registry.Grade(&q, tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, *res.IsCorrect, tt.raw)
		if tt.want {
			assert.Equal(t, 4.0, res.PointsEarned)
		}
	}
}

func TestEssayGrader_NeverAwardsPoints(t *testing.T) {
	q := models.Question{ID: 5, Type: models.Essay, Points: 20}
	registry := DefaultRegistry()

	for _, raw := range []string{"", "A thoughtful essay about PID controllers."} {
		res, err := registry.Grade(&q, raw)
		require.NoError(t, err)
		assert.Nil(t, res.IsCorrect)
		assert.Zero(t, res.PointsEarned)
	}
}

func TestRegistry_UnansweredAndUnknown(t *testing.T) {
	registry := DefaultRegistry()

	tf := keyedQuestion(6, models.TrueFalse, 5, "false")
	res, err := registry.Grade(&tf, "   ")
	require.NoError(t, err)
	assert.False(t, *res.IsCorrect)

	odd := models.Question{ID: 7, Type: models.QuestionType("matching"), Points: 5}
	res, err = registry.Grade(&odd, "anything")
	assert.ErrorIs(t, err, ErrUnknownQuestionType)
	assert.False(t, *res.IsCorrect)
	assert.Zero(t, res.PointsEarned)
}

func sampleQuiz() *models.Quiz {
	return &models.Quiz{
		ID:           1,
		PassingScore: floatPtr(60),
		Questions: []models.Question{
			mcQuestion(1, 10,
				models.QuestionOption{Text: "A", IsCorrect: true},
				models.QuestionOption{Text: "B"},
			),
			keyedQuestion(2, models.TrueFalse, 10, "true"),
		},
	}
}

func TestGradeQuiz_AllCorrect(t *testing.T) {
	out := DefaultRegistry().GradeQuiz(sampleQuiz(), 42, map[uint]string{
		1: `["A"]`,
		2: "TRUE",
	})

	assert.Equal(t, 20.0, out.PointsEarned)
	assert.Equal(t, 20.0, out.PointsTotal)
	assert.Equal(t, 100.0, out.Percentage)
	assert.True(t, out.IsPassing)
	assert.Empty(t, out.Failures)
	require.Len(t, out.Answers, 2)
	for _, a := range out.Answers {
		assert.Equal(t, uint(42), a.AttemptID)
		assert.True(t, *a.IsCorrect)
	}
}

func TestGradeQuiz_AllWrong(t *testing.T) {
	out := DefaultRegistry().GradeQuiz(sampleQuiz(), 42, map[uint]string{
		1: `["A","B"]`,
		2: "false",
	})

	assert.Zero(t, out.PointsEarned)
	assert.Equal(t, 20.0, out.PointsTotal)
	assert.Zero(t, out.Percentage)
	assert.False(t, out.IsPassing)
}

func TestGradeQuiz_MalformedQuestionDoesNotAbortOthers(t *testing.T) {
	out := DefaultRegistry().GradeQuiz(sampleQuiz(), 42, map[uint]string{
		1: `{not json`,
		2: "true",
		99: "ignored",
	})

	assert.Equal(t, 10.0, out.PointsEarned)
	assert.Equal(t, 50.0, out.Percentage)
	require.Len(t, out.Failures, 1)
	assert.Equal(t, uint(1), out.Failures[0].QuestionID)
	assert.ErrorIs(t, out.Failures[0].Err, ErrMalformedAnswer)
	assert.Len(t, out.Answers, 2)
}

func TestGradeQuiz_ZeroPointsAndNoThreshold(t *testing.T) {
	out := DefaultRegistry().GradeQuiz(&models.Quiz{ID: 2}, 1, nil)

	assert.Zero(t, out.PointsTotal)
	assert.Zero(t, out.Percentage)
	assert.True(t, out.IsPassing)
	assert.Empty(t, out.Answers)
}

func TestGradeQuiz_EssayContributesNothing(t *testing.T) {
	quiz := &models.Quiz{
		Questions: []models.Question{
			{ID: 1, Type: models.Essay, Points: 50},
			keyedQuestion(2, models.TrueFalse, 50, "true"),
		},
	}
	out := DefaultRegistry().GradeQuiz(quiz, 1, map[uint]string{1: "essay text", 2: "true"})

	assert.Equal(t, 50.0, out.PointsEarned)
	assert.Equal(t, 100.0, out.PointsTotal)
	assert.Nil(t, out.Answers[0].IsCorrect)
	assert.Zero(t, out.Answers[0].PointsEarned)
}

func TestElapsedSeconds(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 90, ElapsedSeconds(start, start.Add(90*time.Second+900*time.Millisecond)))
	assert.Equal(t, 0, ElapsedSeconds(start, start.Add(-5*time.Second)))
	assert.Equal(t, 0, ElapsedSeconds(start, start))
}

func TestLetterGrade(t *testing.T) {
	tests := map[float64]string{
		100: "A+", 95: "A", 90: "A-", 88: "B+", 85: "B", 80: "B-",
		78: "C+", 75: "C", 70: "C-", 68: "D+", 64: "D", 60: "D-", 59.9: "F", 0: "F",
	}
	for pct, want := range tests {
		assert.Equal(t, want, LetterGrade(pct), pct)
	}
}
