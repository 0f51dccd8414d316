// Package events delivers exercise lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/exerciselog/internal/domain"
)

// Topic carries exercise lifecycle events, partitioned by user.
const Topic = "exercise_events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes exercise.created events to Kafka. Delivery is best
// effort: entries are durable before publishing, so failures are reported
// to the caller for logging but never retried here.
type Publisher struct {
	brokers []string
	mu      sync.Mutex
	writer  messageWriter
}

// NewPublisher creates a Publisher. With no brokers the Publisher is
// disabled and every publish is a no-op.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{brokers: brokers}
}

// Enabled reports whether any brokers are configured.
func (p *Publisher) Enabled() bool {
	return len(p.brokers) > 0
}

// exerciseCreatedEvent is the wire payload for exercise.created.
type exerciseCreatedEvent struct {
	ExerciseID  string    `json:"exercise_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Description string    `json:"description"`
	DurationMin int       `json:"duration_min"`
	Date        time.Time `json:"date"`
}

// PublishExerciseCreated emits one event for a freshly persisted entry,
// keyed by the owning user so a user's events stay ordered per partition.
func (p *Publisher) PublishExerciseCreated(ctx context.Context, exercise domain.Exercise) error {
	if !p.Enabled() {
		return nil
	}

	payload, err := json.Marshal(exerciseCreatedEvent{
		ExerciseID:  exercise.ID,
		UserID:      exercise.UserID,
		Username:    exercise.Username,
		Description: exercise.Description,
		DurationMin: exercise.Duration,
		Date:        exercise.Date,
	})
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(exercise.UserID),
		Value: payload,
		Time:  exercise.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("exercise.created")},
		},
	}

	if err := p.getWriter().WriteMessages(ctx, msg); err != nil {
		publishFailedCounter.Inc()
		return err
	}
	publishedCounter.Inc()
	return nil
}

func (p *Publisher) getWriter() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		p.writer = &kafka.Writer{
			Addr:         kafka.TCP(p.brokers...),
			Topic:        Topic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		}
	}
	return p.writer
}

// Close releases the underlying writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writer.(*kafka.Writer); ok {
		p.writer = nil
		return writer.Close()
	}
	return nil
}
