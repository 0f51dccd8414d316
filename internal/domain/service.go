// Package domain defines the business logic for the exercise log service.
package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrDuplicateUsername indicates a registration collided with an existing username.
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrUnknownUser is returned when an operation references a user that does not exist.
	ErrUnknownUser = errors.New("unknown user")
	// ErrMissingUsername is returned when a registration carries no username.
	ErrMissingUsername = errors.New("username is required")
	// ErrMissingDescription is returned when an exercise carries no description.
	ErrMissingDescription = errors.New("description is required")
	// ErrInvalidDuration is returned when a duration does not coerce to a positive whole number.
	ErrInvalidDuration = errors.New("duration must be a positive whole number")
	// ErrInvalidDate is returned when a supplied date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
)

// UserRepository captures persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

// ExerciseRepository captures persistence operations for exercise entries.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise Exercise) error
	ListByUser(ctx context.Context, userID string, filter LogFilter) ([]Exercise, error)
}

// EventPublisher emits exercise lifecycle events to downstream consumers.
type EventPublisher interface {
	PublishExerciseCreated(ctx context.Context, exercise Exercise) error
}

// Service orchestrates user registration, exercise recording, and log queries.
type Service struct {
	users     UserRepository
	exercises ExerciseRepository
	events    EventPublisher
}

// NewService constructs a Service. events may be nil to disable publishing.
func NewService(users UserRepository, exercises ExerciseRepository, events EventPublisher) *Service {
	return &Service{users: users, exercises: exercises, events: events}
}

// RegisterUser persists a new user. The store's unique constraint is the sole
// arbiter of username uniqueness; concurrent registrations with the same
// username race safely and the loser observes ErrDuplicateUsername.
func (s *Service) RegisterUser(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrMissingUsername
	}

	user := User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return &user, nil
}

// ListUsers returns all registered users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.users.List(ctx)
}

// RecordExerciseInput captures the payload from the API layer. Date is
// optional and defaults to the current time.
type RecordExerciseInput struct {
	UserID      string
	Description string
	Duration    int
	Date        *time.Time
}

// RecordExercise validates the input, resolves the owning user, and persists
// a new exercise entry stamped with the user's username.
func (s *Service) RecordExercise(ctx context.Context, input RecordExerciseInput) (*Exercise, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, ErrMissingDescription
	}
	if input.Duration < 1 {
		return nil, ErrInvalidDuration
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}

	now := time.Now().UTC()
	date := now
	if input.Date != nil {
		date = input.Date.UTC()
	}

	exercise := Exercise{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Username:    user.Username,
		Description: description,
		Duration:    input.Duration,
		Date:        date,
		CreatedAt:   now,
	}

	if err := s.exercises.Create(ctx, exercise); err != nil {
		return nil, err
	}

	// Publishing is best effort: the entry is already durable and the
	// request must not fail on broker trouble.
	if s.events != nil {
		if err := s.events.PublishExerciseCreated(ctx, exercise); err != nil {
			logrus.WithError(err).WithField("exercise_id", exercise.ID).
				Warn("failed to publish exercise.created event")
		}
	}

	return &exercise, nil
}

// BuildLog resolves the user and assembles their filtered, possibly truncated
// exercise log. Read-only.
func (s *Service) BuildLog(ctx context.Context, userID string, filter LogFilter) (*Log, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnknownUser
	}

	entries, err := s.exercises.ListByUser(ctx, user.ID, filter)
	if err != nil {
		return nil, err
	}

	return &Log{
		UserID:   user.ID,
		Username: user.Username,
		Count:    len(entries),
		Entries:  entries,
	}, nil
}
