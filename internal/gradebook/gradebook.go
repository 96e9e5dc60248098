// Package gradebook projects a course's assignments, quizzes, submissions and
// quiz attempts into a student by item matrix. It only reads its inputs.
package gradebook

import (
	"fmt"
	"sort"
	"time"

	"github.com/robotics-academy/grading-service/internal/grading"
	"github.com/robotics-academy/grading-service/internal/models"
)

// EmptyGradePolicy decides the average reported for a student with no counted work
type EmptyGradePolicy string

const (
	EmptyGradeZero EmptyGradePolicy = "zero"
	EmptyGradeFull EmptyGradePolicy = "full"
)

var EmptyGradePolicies = []EmptyGradePolicy{EmptyGradeZero, EmptyGradeFull}

func (p EmptyGradePolicy) IsValid() bool {
	return p == EmptyGradeZero || p == EmptyGradeFull
}

// Value is the average used when nothing has been counted yet
func (p EmptyGradePolicy) Value() float64 {
	if p == EmptyGradeFull {
		return 100
	}
	return 0
}

type ItemType string

const (
	ItemAssignment ItemType = "assignment"
	ItemQuiz       ItemType = "quiz"
)

// QuizMaxPoints is the column maximum for quizzes, whose scores are percentages
const QuizMaxPoints = 100

const (
	StatusMissing      = "missing"
	StatusGraded       = "graded"
	StatusNotAttempted = "not_attempted"
	StatusCompleted    = "completed"
)

type Column struct {
	Key       string     `json:"key"`
	ItemID    uint       `json:"item_id"`
	Type      ItemType   `json:"type"`
	Title     string     `json:"title"`
	MaxPoints float64    `json:"max_points"`
	DueDate   *time.Time `json:"due_date,omitempty"`

	GradedCount int      `json:"graded_count"`
	Average     *float64 `json:"average"`
}

type Cell struct {
	Score       *float64   `json:"score"`
	Status      string     `json:"status"`
	MaxPoints   float64    `json:"max_points"`
	AttemptID   *uint      `json:"attempt_id,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

type Student struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type Summary struct {
	TotalEarned   float64 `json:"total_earned"`
	TotalPossible float64 `json:"total_possible"`
	Average       float64 `json:"average"`
	LetterGrade   string  `json:"letter_grade"`
}

type Row struct {
	Student Student         `json:"student"`
	Grades  map[string]Cell `json:"grades"`
	Summary Summary         `json:"summary"`
}

type Analytics struct {
	TotalStudents int     `json:"total_students"`
	CourseAverage float64 `json:"course_average"`
}

type Gradebook struct {
	CourseID    uint      `json:"course_id"`
	Columns     []Column  `json:"columns"`
	Rows        []Row     `json:"rows"`
	Analytics   Analytics `json:"analytics"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Input holds everything already fetched for one course. Students is optional
// and only used for display names.
type Input struct {
	CourseID    uint
	Assignments []models.Assignment
	Quizzes     []models.Quiz
	Enrollments []models.Enrollment
	Submissions []models.Submission
	Attempts    []models.QuizAttempt
	Students    map[string]*models.User
	Policy      EmptyGradePolicy
	Now         time.Time
}

func AssignmentKey(id uint) string { return fmt.Sprintf("%s:%d", ItemAssignment, id) }

func QuizKey(id uint) string { return fmt.Sprintf("%s:%d", ItemQuiz, id) }

type studentItem struct {
	studentID string
	itemID    uint
}

// Build assembles the gradebook. Columns list assignments by due date
// (undated last) followed by quizzes by creation time. Rows follow the
// enrollment order; work from students who are not enrolled is ignored.
func Build(in Input) *Gradebook {
	assignments := sortedAssignments(in.Assignments)
	quizzes := sortedQuizzes(in.Quizzes)

	submissions := make(map[studentItem]*models.Submission, len(in.Submissions))
	for i := range in.Submissions {
		s := &in.Submissions[i]
		submissions[studentItem{s.StudentID, s.AssignmentID}] = s
	}
	best := bestAttempts(in.Attempts)

	gb := &Gradebook{
		CourseID:    in.CourseID,
		Columns:     make([]Column, 0, len(assignments)+len(quizzes)),
		Rows:        make([]Row, 0, len(in.Enrollments)),
		GeneratedAt: in.Now,
	}
	for _, a := range assignments {
		gb.Columns = append(gb.Columns, Column{
			Key:       AssignmentKey(a.ID),
			ItemID:    a.ID,
			Type:      ItemAssignment,
			Title:     a.Title,
			MaxPoints: a.MaxPoints,
			DueDate:   a.DueDate,
		})
	}
	for _, q := range quizzes {
		gb.Columns = append(gb.Columns, Column{
			Key:       QuizKey(q.ID),
			ItemID:    q.ID,
			Type:      ItemQuiz,
			Title:     q.Title,
			MaxPoints: QuizMaxPoints,
		})
	}

	for _, e := range in.Enrollments {
		row := Row{
			Student: studentFor(e.StudentID, in.Students),
			Grades:  make(map[string]Cell, len(gb.Columns)),
		}
		var earned, possible float64

		for _, a := range assignments {
			cell := assignmentCell(a, submissions[studentItem{e.StudentID, a.ID}])
			if cell.Score != nil {
				earned += *cell.Score
				possible += a.MaxPoints
			}
			row.Grades[AssignmentKey(a.ID)] = cell
		}
		for _, q := range quizzes {
			cell := quizCell(best[studentItem{e.StudentID, q.ID}])
			if cell.Score != nil {
				earned += *cell.Score
				possible += QuizMaxPoints
			}
			row.Grades[QuizKey(q.ID)] = cell
		}

		row.Summary = summarize(earned, possible, in.Policy)
		gb.Rows = append(gb.Rows, row)
	}

	gb.Analytics = analytics(gb.Rows)
	columnStats(gb)
	return gb
}

// RowFor returns the row of one student, if enrolled
func (gb *Gradebook) RowFor(studentID string) (*Row, bool) {
	for i := range gb.Rows {
		if gb.Rows[i].Student.ID == studentID {
			return &gb.Rows[i], true
		}
	}
	return nil, false
}

// ===== CELLS =====

func assignmentCell(a models.Assignment, sub *models.Submission) Cell {
	cell := Cell{MaxPoints: a.MaxPoints}
	switch {
	case sub == nil:
		cell.Status = StatusMissing
	case sub.Grade == nil:
		cell.Status = string(sub.Status)
		cell.SubmittedAt = sub.SubmittedAt
	default:
		grade := *sub.Grade
		cell.Score = &grade
		cell.Status = StatusGraded
		cell.SubmittedAt = sub.SubmittedAt
	}
	return cell
}

func quizCell(attempt *models.QuizAttempt) Cell {
	cell := Cell{MaxPoints: QuizMaxPoints}
	if attempt == nil {
		cell.Status = StatusNotAttempted
		return cell
	}
	score := *attempt.Score
	id := attempt.ID
	cell.Score = &score
	cell.Status = StatusCompleted
	cell.AttemptID = &id
	cell.SubmittedAt = attempt.SubmittedAt
	return cell
}

// bestAttempts keeps the highest scoring submitted attempt per student and
// quiz. Ties go to the earliest submission.
func bestAttempts(attempts []models.QuizAttempt) map[studentItem]*models.QuizAttempt {
	best := make(map[studentItem]*models.QuizAttempt)
	for i := range attempts {
		a := &attempts[i]
		if a.SubmittedAt == nil || a.Score == nil {
			continue
		}
		key := studentItem{a.StudentID, a.QuizID}
		current, ok := best[key]
		if !ok || *a.Score > *current.Score ||
			(*a.Score == *current.Score && a.SubmittedAt.Before(*current.SubmittedAt)) {
			best[key] = a
		}
	}
	return best
}

// ===== SUMMARIES =====

func summarize(earned, possible float64, policy EmptyGradePolicy) Summary {
	average := policy.Value()
	if possible > 0 {
		average = earned / possible * 100
	}
	return Summary{
		TotalEarned:   earned,
		TotalPossible: possible,
		Average:       average,
		LetterGrade:   grading.LetterGrade(average),
	}
}

func analytics(rows []Row) Analytics {
	out := Analytics{TotalStudents: len(rows)}
	if len(rows) == 0 {
		return out
	}
	var sum float64
	for _, r := range rows {
		sum += r.Summary.Average
	}
	out.CourseAverage = sum / float64(len(rows))
	return out
}

func columnStats(gb *Gradebook) {
	for i := range gb.Columns {
		col := &gb.Columns[i]
		var sum float64
		for _, r := range gb.Rows {
			if cell, ok := r.Grades[col.Key]; ok && cell.Score != nil {
				sum += *cell.Score
				col.GradedCount++
			}
		}
		if col.GradedCount > 0 {
			avg := sum / float64(col.GradedCount)
			col.Average = &avg
		}
	}
}

// ===== ORDERING =====

func sortedAssignments(in []models.Assignment) []models.Assignment {
	out := append([]models.Assignment(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

func sortedQuizzes(in []models.Quiz) []models.Quiz {
	out := append([]models.Quiz(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func studentFor(id string, users map[string]*models.User) Student {
	if u, ok := users[id]; ok && u != nil {
		return Student{ID: id, Name: u.DisplayName(), Email: u.Email}
	}
	return Student{ID: id, Name: id}
}
