package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aulavista/facemark/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Find returns the attendance record for (studentID, lessonID), or
// (nil, nil) when none exists.
func (r *AttendanceRepository) Find(ctx context.Context, studentID, lessonID uuid.UUID) (*domain.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, lesson_id, status, marked_at, provenance, note, created_at, updated_at
		FROM attendance_records
		WHERE student_id = $1 AND lesson_id = $2
	`

	var record domain.AttendanceRecord
	err := r.pool.QueryRow(ctx, query, studentID, lessonID).Scan(
		&record.ID,
		&record.StudentID,
		&record.LessonID,
		&record.Status,
		&record.MarkedAt,
		&record.Provenance,
		&record.Note,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attendance record: %w", err)
	}

	return &record, nil
}

// Upsert writes the record, keyed on (student_id, lesson_id). The unique
// constraint plus ON CONFLICT makes concurrent marks for the same pair
// collapse into one row with the last write winning.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error) {
	query := `
		INSERT INTO attendance_records (id, student_id, lesson_id, status, marked_at, provenance, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (student_id, lesson_id) DO UPDATE
		SET status = EXCLUDED.status,
		    marked_at = EXCLUDED.marked_at,
		    provenance = EXCLUDED.provenance,
		    note = EXCLUDED.note,
		    updated_at = NOW()
		RETURNING id, student_id, lesson_id, status, marked_at, provenance, note, created_at, updated_at
	`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	var persisted domain.AttendanceRecord
	err := r.pool.QueryRow(ctx, query,
		record.ID,
		record.StudentID,
		record.LessonID,
		record.Status,
		record.MarkedAt,
		record.Provenance,
		record.Note,
	).Scan(
		&persisted.ID,
		&persisted.StudentID,
		&persisted.LessonID,
		&persisted.Status,
		&persisted.MarkedAt,
		&persisted.Provenance,
		&persisted.Note,
		&persisted.CreatedAt,
		&persisted.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert attendance record: %w", err)
	}

	return &persisted, nil
}

// ListByLesson returns every attendance record for a lesson, most recently
// marked first.
func (r *AttendanceRepository) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, lesson_id, status, marked_at, provenance, note, created_at, updated_at
		FROM attendance_records
		WHERE lesson_id = $1
		ORDER BY marked_at DESC
	`

	rows, err := r.pool.Query(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var record domain.AttendanceRecord
		if err := rows.Scan(
			&record.ID,
			&record.StudentID,
			&record.LessonID,
			&record.Status,
			&record.MarkedAt,
			&record.Provenance,
			&record.Note,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance records: %w", err)
	}

	return records, nil
}

var _ AttendanceRepositoryInterface = (*AttendanceRepository)(nil)
