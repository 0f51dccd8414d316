package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/exerciselog/internal/domain"
	"example.com/exerciselog/internal/observability"
)

// ExerciseRepository persists exercise entries in PostgreSQL.
type ExerciseRepository struct {
	pool *pgxpool.Pool
}

// NewExerciseRepository constructs an ExerciseRepository.
func NewExerciseRepository(pool *pgxpool.Pool) *ExerciseRepository {
	return &ExerciseRepository{pool: pool}
}

// Create persists an exercise entry. The username column carries the
// denormalized copy taken from the owning user at creation time.
func (r *ExerciseRepository) Create(ctx context.Context, exercise domain.Exercise) error {
	const stmt = `INSERT INTO exercises (exercise_id, user_id, username, description, duration_min, exercised_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, stmt,
		exercise.ID,
		exercise.UserID,
		exercise.Username,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
		exercise.CreatedAt,
	)
	if err != nil {
		return err
	}

	observability.RecordExercisePersisted(exercise.CreatedAt)
	return nil
}

// ListByUser returns a user's exercise entries in chronological order,
// narrowed by the optional date bounds and truncated to the optional limit.
// Both bounds are inclusive and applied independently.
func (r *ExerciseRepository) ListByUser(ctx context.Context, userID string, filter domain.LogFilter) ([]domain.Exercise, error) {
	start := time.Now()
	defer func() { observability.ObserveLogQuery(time.Since(start)) }()

	query := `SELECT exercise_id, user_id, username, description, duration_min, exercised_at, created_at
        FROM exercises WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND exercised_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND exercised_at <= $%d", len(args))
	}

	query += " ORDER BY exercised_at, created_at, exercise_id"

	if filter.Limit != nil {
		args = append(args, *filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.Exercise, 0)
	for rows.Next() {
		var entry domain.Exercise
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Username, &entry.Description, &entry.Duration, &entry.Date, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
