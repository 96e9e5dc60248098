package gradebook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotics-academy/grading-service/internal/models"
)

var base = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

func at(minutes int) *time.Time {
	t := base.Add(time.Duration(minutes) * time.Minute)
	return &t
}

func f(v float64) *float64 { return &v }

func attempt(id, quizID uint, student string, score float64, submittedMinute int) models.QuizAttempt {
	return models.QuizAttempt{
		ID:          id,
		QuizID:      quizID,
		StudentID:   student,
		StartedAt:   base,
		SubmittedAt: at(submittedMinute),
		Score:       f(score),
	}
}

func TestBuild_ReferenceScenario(t *testing.T) {
	gb := Build(Input{
		CourseID: 7,
		Assignments: []models.Assignment{
			{ID: 1, Title: "Line follower", MaxPoints: 100, DueDate: at(100)},
			{ID: 2, Title: "Gripper", MaxPoints: 100, DueDate: at(200)},
		},
		Quizzes:     []models.Quiz{{ID: 10, Title: "Sensors"}},
		Enrollments: []models.Enrollment{{CourseID: 7, StudentID: "s1"}},
		Submissions: []models.Submission{
			{AssignmentID: 1, StudentID: "s1", Status: models.SubmissionGraded, Grade: f(80)},
		},
		Attempts: []models.QuizAttempt{attempt(1, 10, "s1", 60, 5)},
		Policy:   EmptyGradeZero,
	})

	require.Len(t, gb.Rows, 1)
	s := gb.Rows[0].Summary
	assert.Equal(t, 140.0, s.TotalEarned)
	assert.Equal(t, 200.0, s.TotalPossible)
	assert.Equal(t, 70.0, s.Average)
	assert.Equal(t, "C-", s.LetterGrade)

	grades := gb.Rows[0].Grades
	assert.Equal(t, StatusGraded, grades[AssignmentKey(1)].Status)
	assert.Equal(t, StatusMissing, grades[AssignmentKey(2)].Status)
	assert.Nil(t, grades[AssignmentKey(2)].Score)
	assert.Equal(t, StatusCompleted, grades[QuizKey(10)].Status)

	assert.Equal(t, 1, gb.Analytics.TotalStudents)
	assert.Equal(t, 70.0, gb.Analytics.CourseAverage)
}

func TestBuild_ColumnOrder(t *testing.T) {
	gb := Build(Input{
		Assignments: []models.Assignment{
			{ID: 3, Title: "undated"},
			{ID: 2, Title: "late", DueDate: at(300)},
			{ID: 1, Title: "early", DueDate: at(10)},
		},
		Quizzes: []models.Quiz{
			{ID: 20, CreatedAt: *at(50)},
			{ID: 21, CreatedAt: *at(1)},
		},
	})

	var keys []string
	for _, c := range gb.Columns {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"assignment:1", "assignment:2", "assignment:3", "quiz:21", "quiz:20"}, keys)
	assert.Equal(t, float64(QuizMaxPoints), gb.Columns[3].MaxPoints)
}

func TestBuild_BestAttemptIsHighestScore(t *testing.T) {
	gb := Build(Input{
		Quizzes:     []models.Quiz{{ID: 1}},
		Enrollments: []models.Enrollment{{StudentID: "s1"}},
		Attempts: []models.QuizAttempt{
			attempt(1, 1, "s1", 40, 1),
			attempt(2, 1, "s1", 95, 2),
			attempt(3, 1, "s1", 70, 3),
		},
	})

	cell := gb.Rows[0].Grades[QuizKey(1)]
	require.NotNil(t, cell.Score)
	assert.Equal(t, 95.0, *cell.Score)
	assert.Equal(t, uint(2), *cell.AttemptID)
}

func TestBuild_BestAttemptTieGoesToEarliest(t *testing.T) {
	gb := Build(Input{
		Quizzes:     []models.Quiz{{ID: 1}},
		Enrollments: []models.Enrollment{{StudentID: "s1"}},
		Attempts: []models.QuizAttempt{
			attempt(5, 1, "s1", 80, 30),
			attempt(4, 1, "s1", 80, 10),
		},
	})

	assert.Equal(t, uint(4), *gb.Rows[0].Grades[QuizKey(1)].AttemptID)
}

func TestBuild_UnsubmittedAttemptIsNotAttempted(t *testing.T) {
	open := models.QuizAttempt{ID: 9, QuizID: 1, StudentID: "s1", StartedAt: base}

	gb := Build(Input{
		Quizzes:     []models.Quiz{{ID: 1}},
		Enrollments: []models.Enrollment{{StudentID: "s1"}},
		Attempts:    []models.QuizAttempt{open},
	})

	cell := gb.Rows[0].Grades[QuizKey(1)]
	assert.Equal(t, StatusNotAttempted, cell.Status)
	assert.Nil(t, cell.Score)
}

func TestBuild_UngradedSubmissionKeepsItsStatus(t *testing.T) {
	gb := Build(Input{
		Assignments: []models.Assignment{{ID: 1, MaxPoints: 50}},
		Enrollments: []models.Enrollment{{StudentID: "s1"}},
		Submissions: []models.Submission{
			{AssignmentID: 1, StudentID: "s1", Status: models.SubmissionSubmitted, SubmittedAt: at(3)},
		},
		Policy: EmptyGradeZero,
	})

	cell := gb.Rows[0].Grades[AssignmentKey(1)]
	assert.Equal(t, "submitted", cell.Status)
	assert.Nil(t, cell.Score)
	assert.Zero(t, gb.Rows[0].Summary.TotalPossible)
}

func TestBuild_EmptyGradePolicy(t *testing.T) {
	for _, tt := range []struct {
		policy EmptyGradePolicy
		want   float64
	}{
		{EmptyGradeZero, 0},
		{EmptyGradeFull, 100},
	} {
		t.Run(string(tt.policy), func(t *testing.T) {
			gb := Build(Input{
				Assignments: []models.Assignment{{ID: 1, MaxPoints: 100}},
				Enrollments: []models.Enrollment{{StudentID: "s1"}},
				Policy:      tt.policy,
			})
			assert.Equal(t, tt.want, gb.Rows[0].Summary.Average)
			assert.Equal(t, tt.want, gb.Analytics.CourseAverage)
		})
	}
}

func TestBuild_RowsOnlyForEnrolledStudents(t *testing.T) {
	gb := Build(Input{
		Assignments: []models.Assignment{{ID: 1, MaxPoints: 10}},
		Enrollments: []models.Enrollment{{StudentID: "s2"}, {StudentID: "s1"}},
		Submissions: []models.Submission{
			{AssignmentID: 1, StudentID: "stray", Status: models.SubmissionGraded, Grade: f(10)},
			{AssignmentID: 1, StudentID: "s1", Status: models.SubmissionGraded, Grade: f(5)},
		},
		Students: map[string]*models.User{"s1": {ID: "s1", FullName: "Ada"}},
	})

	require.Len(t, gb.Rows, 2)
	assert.Equal(t, "s2", gb.Rows[0].Student.ID)
	assert.Equal(t, "s2", gb.Rows[0].Student.Name)
	assert.Equal(t, "Ada", gb.Rows[1].Student.Name)
	_, ok := gb.RowFor("stray")
	assert.False(t, ok)

	assert.Equal(t, 1, gb.Columns[0].GradedCount)
	assert.Equal(t, 5.0, *gb.Columns[0].Average)
}

func TestBuild_NoStudents(t *testing.T) {
	gb := Build(Input{Quizzes: []models.Quiz{{ID: 1}}, Policy: EmptyGradeFull})

	assert.Empty(t, gb.Rows)
	assert.Zero(t, gb.Analytics.TotalStudents)
	assert.Zero(t, gb.Analytics.CourseAverage)
	assert.Nil(t, gb.Columns[0].Average)
}

func TestBuild_CourseAverageIsMeanOfStudentAverages(t *testing.T) {
	gb := Build(Input{
		Assignments: []models.Assignment{
			{ID: 1, MaxPoints: 10, DueDate: at(1)},
			{ID: 2, MaxPoints: 90, DueDate: at(2)},
		},
		Enrollments: []models.Enrollment{{StudentID: "a"}, {StudentID: "b"}},
		Submissions: []models.Submission{
			{AssignmentID: 1, StudentID: "a", Grade: f(10)},
			{AssignmentID: 2, StudentID: "b", Grade: f(45)},
			{AssignmentID: 1, StudentID: "b", Grade: f(0)},
		},
	})

	a, _ := gb.RowFor("a")
	b, _ := gb.RowFor("b")
	assert.Equal(t, 100.0, a.Summary.Average)
	assert.Equal(t, 45.0, b.Summary.Average)
	assert.Equal(t, 72.5, gb.Analytics.CourseAverage)
}
