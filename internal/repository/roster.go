package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/aulavista/facemark/internal/domain"
)

type RosterRepository struct {
	pool PgxPool
}

func NewRosterRepository(pool PgxPool) *RosterRepository {
	return &RosterRepository{pool: pool}
}

// RosterForLesson returns the active roster for a lesson: every actively
// enrolled student, with their stored descriptor when one exists. An
// existing lesson with no enrollments yields an empty roster, which is not
// an error; a missing lesson is domain.ErrLessonNotFound.
func (r *RosterRepository) RosterForLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.RosterEntry, error) {
	if err := r.lessonExists(ctx, lessonID); err != nil {
		return nil, err
	}

	query := `
		SELECT s.id, s.display_name, s.descriptor, s.descriptor_updated_at
		FROM students s
		INNER JOIN enrollments e ON e.student_id = s.id
		WHERE e.lesson_id = $1 AND e.active
		ORDER BY s.display_name, s.id
	`

	rows, err := r.pool.Query(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get roster for lesson: %w", err)
	}
	defer rows.Close()

	var roster []domain.RosterEntry
	for rows.Next() {
		var entry domain.RosterEntry
		var descriptor *pgvector.Vector

		if err := rows.Scan(&entry.Identity.ID, &entry.Identity.DisplayName, &descriptor, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}

		if descriptor != nil && descriptor.Slice() != nil {
			entry.Descriptor = make(domain.Descriptor, len(descriptor.Slice()))
			for i, v := range descriptor.Slice() {
				entry.Descriptor[i] = float64(v)
			}
		}

		roster = append(roster, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}

	return roster, nil
}

// IsEnrolled reports whether the student is an active roster member of the
// lesson. Reports domain.ErrLessonNotFound when the lesson itself is absent.
func (r *RosterRepository) IsEnrolled(ctx context.Context, studentID, lessonID uuid.UUID) (bool, error) {
	if err := r.lessonExists(ctx, lessonID); err != nil {
		return false, err
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE student_id = $1 AND lesson_id = $2 AND active
		)
	`

	var enrolled bool
	if err := r.pool.QueryRow(ctx, query, studentID, lessonID).Scan(&enrolled); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}

	return enrolled, nil
}

// SaveDescriptor stores a confirmed descriptor as the student's reference.
// The descriptor is validated at this boundary so malformed payloads never
// reach the matcher.
func (r *RosterRepository) SaveDescriptor(ctx context.Context, studentID uuid.UUID, descriptor domain.Descriptor) error {
	parsed, err := domain.ParseDescriptor(descriptor)
	if err != nil {
		return err
	}

	floats := make([]float32, len(parsed))
	for i, v := range parsed {
		floats[i] = float32(v)
	}
	vec := pgvector.NewVector(floats)

	query := `
		UPDATE students
		SET descriptor = $2, descriptor_updated_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, studentID, vec)
	if err != nil {
		return fmt.Errorf("save descriptor: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}

	return nil
}

func (r *RosterRepository) lessonExists(ctx context.Context, lessonID uuid.UUID) error {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT id FROM lessons WHERE id = $1`, lessonID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrLessonNotFound
	}
	if err != nil {
		return fmt.Errorf("check lesson: %w", err)
	}
	return nil
}

var _ RosterRepositoryInterface = (*RosterRepository)(nil)
