package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSource  = "grading-service"
	EventVersion = "1.0"
)

type EventType string

const (
	QuizAttemptGraded EventType = "quiz.attempt_graded"
)

// Event is the envelope of everything the service publishes
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// QuizAttemptGradedData is the payload of QuizAttemptGraded
type QuizAttemptGradedData struct {
	AttemptID    uint      `json:"attempt_id"`
	QuizID       uint      `json:"quiz_id"`
	CourseID     uint      `json:"course_id"`
	StudentID    string    `json:"student_id"`
	Score        float64   `json:"score"`
	PointsEarned float64   `json:"points_earned"`
	PointsTotal  float64   `json:"points_total"`
	IsPassing    bool      `json:"is_passing"`
	SubmittedAt  time.Time `json:"submitted_at"`
	TimeSpent    int       `json:"time_spent"`
}

func NewEvent(eventType EventType, data any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    EventSource,
		Version:   EventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher publishes domain events. Publishing is best effort from the
// caller's point of view: a failed publish never undoes a committed write.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
