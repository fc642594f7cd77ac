package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/domain"
)

type RecognitionEventRepository struct {
	pool PgxPool
}

func NewRecognitionEventRepository(pool PgxPool) *RecognitionEventRepository {
	return &RecognitionEventRepository{pool: pool}
}

// Create stores one recognition attempt outcome.
func (r *RecognitionEventRepository) Create(ctx context.Context, event *domain.RecognitionEvent) error {
	query := `
		INSERT INTO recognition_events (id, lesson_id, student_id, matched, distance, confidence)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		event.ID,
		event.LessonID,
		event.StudentID,
		event.Matched,
		event.Distance,
		event.Confidence,
	).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("create recognition event: %w", err)
	}

	return nil
}

// ListByLesson returns the most recent recognition events for a lesson.
func (r *RecognitionEventRepository) ListByLesson(ctx context.Context, lessonID uuid.UUID, limit int) ([]domain.RecognitionEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, lesson_id, student_id, matched, distance, confidence, created_at
		FROM recognition_events
		WHERE lesson_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, lessonID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recognition events: %w", err)
	}
	defer rows.Close()

	var events []domain.RecognitionEvent
	for rows.Next() {
		var event domain.RecognitionEvent
		if err := rows.Scan(
			&event.ID,
			&event.LessonID,
			&event.StudentID,
			&event.Matched,
			&event.Distance,
			&event.Confidence,
			&event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan recognition event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recognition events: %w", err)
	}

	return events, nil
}

var _ RecognitionEventRepositoryInterface = (*RecognitionEventRepository)(nil)
