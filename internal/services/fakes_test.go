package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robotics-academy/grading-service/internal/models"
	"github.com/robotics-academy/grading-service/internal/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

// memStore is an in-memory Repository. Transactions are serialized and rolled
// back by restoring a snapshot of the attempt tables.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	courses     map[uint]*models.Course
	enrollments []models.Enrollment
	quizzes     map[uint]*models.Quiz
	attempts    map[uint]*models.QuizAttempt
	answers     map[uint][]models.QuizAnswer
	assignments []models.Assignment
	submissions []models.Submission
	users       map[string]*models.User

	nextAttemptID uint
	replaceErr    error
	usersErr      error
	builds        int

	// runs after ListSubmittedByCourse has taken its snapshot
	afterAttemptsListed func()
}

func newMemStore() *memStore {
	return &memStore{
		courses:       map[uint]*models.Course{},
		quizzes:       map[uint]*models.Quiz{},
		attempts:      map[uint]*models.QuizAttempt{},
		answers:       map[uint][]models.QuizAnswer{},
		users:         map[string]*models.User{},
		nextAttemptID: 1,
	}
}

func (m *memStore) addAttempt(a models.QuizAttempt) *models.QuizAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID == 0 {
		a.ID = m.nextAttemptID
	}
	if a.ID >= m.nextAttemptID {
		m.nextAttemptID = a.ID + 1
	}
	m.attempts[a.ID] = &a
	return &a
}

func (m *memStore) attempt(id uint) models.QuizAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.attempts[id]
}

func (m *memStore) storedAnswers(id uint) []models.QuizAnswer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.QuizAnswer(nil), m.answers[id]...)
}

func (m *memStore) buildCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds
}

func (m *memStore) Course() repositories.CourseRepository         { return memCourses{m} }
func (m *memStore) Enrollment() repositories.EnrollmentRepository { return memEnrollments{m} }
func (m *memStore) Quiz() repositories.QuizRepository             { return memQuizzes{m} }
func (m *memStore) Attempt() repositories.AttemptRepository       { return memAttempts{m} }
func (m *memStore) Answer() repositories.AnswerRepository         { return memAnswers{m} }
func (m *memStore) Assignment() repositories.AssignmentRepository { return memAssignments{m} }
func (m *memStore) Submission() repositories.SubmissionRepository { return memSubmissions{m} }
func (m *memStore) User() repositories.UserRepository             { return memUsers{m} }
func (m *memStore) Ping(context.Context) error                    { return nil }
func (m *memStore) Close() error                                  { return nil }

func (m *memStore) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	attempts := make(map[uint]models.QuizAttempt, len(m.attempts))
	for id, a := range m.attempts {
		attempts[id] = *a
	}
	answers := make(map[uint][]models.QuizAnswer, len(m.answers))
	for id, a := range m.answers {
		answers[id] = a
	}
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.attempts = make(map[uint]*models.QuizAttempt, len(attempts))
		for id, a := range attempts {
			a := a
			m.attempts[id] = &a
		}
		m.answers = answers
		m.mu.Unlock()
		return err
	}
	return nil
}

type memCourses struct{ m *memStore }

func (r memCourses) GetByID(_ context.Context, id uint) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

type memEnrollments struct{ m *memStore }

func (r memEnrollments) ListByCourse(_ context.Context, courseID uint) ([]models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.builds++
	var out []models.Enrollment
	for _, e := range r.m.enrollments {
		if e.CourseID == courseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r memEnrollments) IsEnrolled(_ context.Context, courseID uint, studentID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, e := range r.m.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

type memQuizzes struct{ m *memStore }

func (r memQuizzes) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	return r.GetWithQuestions(ctx, id)
}

func (r memQuizzes) GetWithQuestions(_ context.Context, id uint) (*models.Quiz, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	q, ok := r.m.quizzes[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *q
	cp.Questions = append([]models.Question(nil), q.Questions...)
	return &cp, nil
}

func (r memQuizzes) ListByCourse(_ context.Context, courseID uint) ([]models.Quiz, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Quiz
	for _, q := range r.m.quizzes {
		if q.CourseID == courseID {
			out = append(out, *q)
		}
	}
	return out, nil
}

type memAttempts struct{ m *memStore }

func (r memAttempts) Create(_ context.Context, a *models.QuizAttempt) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a.ID = r.m.nextAttemptID
	r.m.nextAttemptID++
	cp := *a
	r.m.attempts[a.ID] = &cp
	return nil
}

func (r memAttempts) GetByID(_ context.Context, id uint) (*models.QuizAttempt, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	a, ok := r.m.attempts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAttempts) GetWithAnswers(ctx context.Context, id uint) (*models.QuizAttempt, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Answers = r.m.storedAnswers(id)
	return a, nil
}

func (r memAttempts) MarkSubmitted(_ context.Context, a *models.QuizAttempt) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.attempts[a.ID]
	if !ok || stored.SubmittedAt != nil {
		return repositories.ErrConcurrentUpdate
	}
	cp := *a
	cp.Answers = nil
	r.m.attempts[a.ID] = &cp
	return nil
}

func (r memAttempts) ListSubmittedByCourse(_ context.Context, courseID uint, studentIDs ...string) ([]models.QuizAttempt, error) {
	r.m.mu.Lock()
	var out []models.QuizAttempt
	for _, a := range r.m.attempts {
		q, ok := r.m.quizzes[a.QuizID]
		if !ok || q.CourseID != courseID || a.SubmittedAt == nil || !matches(a.StudentID, studentIDs) {
			continue
		}
		out = append(out, *a)
	}
	hook := r.m.afterAttemptsListed
	r.m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

type memAnswers struct{ m *memStore }

func (r memAnswers) ReplaceForAttempt(_ context.Context, attemptID uint, answers []models.QuizAnswer) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.replaceErr != nil {
		return r.m.replaceErr
	}
	r.m.answers[attemptID] = append([]models.QuizAnswer(nil), answers...)
	return nil
}

func (r memAnswers) ListByAttempt(_ context.Context, attemptID uint) ([]models.QuizAnswer, error) {
	return r.m.storedAnswers(attemptID), nil
}

type memAssignments struct{ m *memStore }

func (r memAssignments) ListByCourse(_ context.Context, courseID uint) ([]models.Assignment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []models.Assignment
	for _, a := range r.m.assignments {
		if a.CourseID == courseID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memSubmissions struct{ m *memStore }

func (r memSubmissions) ListByCourse(_ context.Context, courseID uint, studentIDs ...string) ([]models.Submission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	inCourse := map[uint]bool{}
	for _, a := range r.m.assignments {
		if a.CourseID == courseID {
			inCourse[a.ID] = true
		}
	}
	var out []models.Submission
	for _, s := range r.m.submissions {
		if inCourse[s.AssignmentID] && matches(s.StudentID, studentIDs) {
			out = append(out, s)
		}
	}
	return out, nil
}

type memUsers struct{ m *memStore }

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (r memUsers) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.usersErr != nil {
		return nil, r.m.usersErr
	}
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func matches(studentID string, filter []string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, id := range filter {
		if id == studentID {
			return true
		}
	}
	return false
}

// fixedClock returns a clock that advances only when told to
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errBoom = errors.New("boom")

// ===== FIXTURES =====

var courseStart = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

const (
	instructorID = "teacher-1"
	studentA     = "student-a"
	studentB     = "student-b"
	outsiderID   = "student-x"
)

// seedCourse creates course 1 taught by instructorID with two enrolled
// students and quiz 10 worth 10 points: multiple choice (4), true/false (2),
// short answer (2) and essay (2).
func seedCourse(m *memStore) {
	m.courses[1] = &models.Course{ID: 1, Code: "ROB-101", Title: "Intro to Robotics", InstructorID: instructorID}
	m.enrollments = []models.Enrollment{
		{ID: 1, CourseID: 1, StudentID: studentA, EnrolledAt: courseStart},
		{ID: 2, CourseID: 1, StudentID: studentB, EnrolledAt: courseStart.Add(time.Hour)},
	}
	m.users[studentA] = &models.User{ID: studentA, FullName: "Ada Lovelace", Email: "ada@example.com"}
	m.users[studentB] = &models.User{ID: studentB, FullName: "Grace Hopper", Email: "grace@example.com"}

	m.quizzes[10] = &models.Quiz{
		ID:           10,
		CourseID:     1,
		Title:        "Sensors",
		PassingScore: ptr(60.0),
		CreatedAt:    courseStart,
		Questions: []models.Question{
			{ID: 101, QuizID: 10, Type: models.MultipleChoice, Text: "Which are actuators?", Points: 4, Order: 1, Options: []models.QuestionOption{
				{Text: "Servo", IsCorrect: true},
				{Text: "Stepper", IsCorrect: true},
				{Text: "Lidar"},
			}},
			{ID: 102, QuizID: 10, Type: models.TrueFalse, Text: "Ultrasonic sensors use sound", Points: 2, Order: 2, CorrectAnswer: ptr("true")},
			{ID: 103, QuizID: 10, Type: models.ShortAnswer, Text: "Name a microcontroller", Points: 2, Order: 3, CorrectAnswer: ptr("Arduino, ESP32")},
			{ID: 104, QuizID: 10, Type: models.Essay, Text: "Describe PID control", Points: 2, Order: 4},
		},
	}
	m.assignments = []models.Assignment{
		{ID: 1, CourseID: 1, Title: "Line follower", MaxPoints: 100, DueDate: ptr(courseStart.Add(24 * time.Hour))},
	}
}
