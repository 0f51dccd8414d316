package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/exerciselog/internal/domain"
)

type stubWriter struct {
	messages []kafka.Message
	err      error
}

func (s *stubWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msgs...)
	return nil
}

func counterValue(t *testing.T, c interface {
	Write(*dto.Metric) error
}) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, c.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestPublishExerciseCreated(t *testing.T) {
	writer := &stubWriter{}
	publisher := NewPublisher([]string{"broker:9092"})
	publisher.writer = writer

	exercise := domain.Exercise{
		ID:          "ex-1",
		UserID:      "user-1",
		Username:    "alice",
		Description: "run",
		Duration:    30,
		Date:        time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2024, time.March, 10, 12, 5, 0, 0, time.UTC),
	}

	before := counterValue(t, publishedCounter)
	require.NoError(t, publisher.PublishExerciseCreated(context.Background(), exercise))
	require.Equal(t, before+1, counterValue(t, publishedCounter))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	require.Equal(t, "user-1", string(msg.Key), "events are keyed by the owning user")
	require.Len(t, msg.Headers, 1)
	require.Equal(t, "event_type", msg.Headers[0].Key)
	require.Equal(t, "exercise.created", string(msg.Headers[0].Value))

	var payload exerciseCreatedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	require.Equal(t, "ex-1", payload.ExerciseID)
	require.Equal(t, "alice", payload.Username)
	require.Equal(t, 30, payload.DurationMin)
}

func TestPublishDisabledWithoutBrokers(t *testing.T) {
	publisher := NewPublisher(nil)
	require.False(t, publisher.Enabled())

	err := publisher.PublishExerciseCreated(context.Background(), domain.Exercise{ID: "ex-1"})
	require.NoError(t, err)
	require.Nil(t, publisher.writer, "disabled publisher must not create a writer")
}

func TestPublishFailureCounted(t *testing.T) {
	writer := &stubWriter{err: errors.New("broker down")}
	publisher := NewPublisher([]string{"broker:9092"})
	publisher.writer = writer

	before := counterValue(t, publishFailedCounter)
	err := publisher.PublishExerciseCreated(context.Background(), domain.Exercise{ID: "ex-1", UserID: "user-1"})
	require.Error(t, err)
	require.Equal(t, before+1, counterValue(t, publishFailedCounter))
}
