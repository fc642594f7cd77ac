package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulavista/facemark/internal/domain"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func expectLessonExists(mock pgxmock.PgxPoolIface, lessonID uuid.UUID) {
	mock.ExpectQuery(`SELECT id FROM lessons WHERE id = \$1`).
		WithArgs(lessonID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(lessonID))
}

func vectorOf(dim int, fill float32) pgvector.Vector {
	floats := make([]float32, dim)
	for i := range floats {
		floats[i] = fill
	}
	return pgvector.NewVector(floats)
}

// RosterRepository tests

func TestRosterRepository_RosterForLesson(t *testing.T) {
	lessonID := uuid.New()
	withDescriptor := uuid.New()
	withoutDescriptor := uuid.New()
	now := time.Now()

	mock := newMockPool(t)
	expectLessonExists(mock, lessonID)

	vec := vectorOf(domain.DescriptorDim, 0.25)
	rows := pgxmock.NewRows([]string{"id", "display_name", "descriptor", "descriptor_updated_at"}).
		AddRow(withDescriptor, "Ana Souza", &vec, now).
		AddRow(withoutDescriptor, "Bruno Lima", nil, time.Time{})
	mock.ExpectQuery(`SELECT s.id, s.display_name, s.descriptor, s.descriptor_updated_at FROM students s`).
		WithArgs(lessonID).
		WillReturnRows(rows)

	repo := NewRosterRepository(mock)
	roster, err := repo.RosterForLesson(context.Background(), lessonID)

	require.NoError(t, err)
	require.Len(t, roster, 2)

	assert.Equal(t, "Ana Souza", roster[0].Identity.DisplayName)
	assert.True(t, roster[0].HasDescriptor())
	assert.Len(t, roster[0].Descriptor, domain.DescriptorDim)
	assert.InDelta(t, 0.25, roster[0].Descriptor[0], 0.001)

	assert.Equal(t, "Bruno Lima", roster[1].Identity.DisplayName)
	assert.False(t, roster[1].HasDescriptor(), "a student with no stored descriptor stays in the roster")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepository_RosterForLesson_LessonNotFound(t *testing.T) {
	lessonID := uuid.New()

	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT id FROM lessons WHERE id = \$1`).
		WithArgs(lessonID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewRosterRepository(mock)
	_, err := repo.RosterForLesson(context.Background(), lessonID)

	assert.ErrorIs(t, err, domain.ErrLessonNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepository_RosterForLesson_EmptyRoster(t *testing.T) {
	lessonID := uuid.New()

	mock := newMockPool(t)
	expectLessonExists(mock, lessonID)
	mock.ExpectQuery(`SELECT s.id, s.display_name, s.descriptor, s.descriptor_updated_at FROM students s`).
		WithArgs(lessonID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "display_name", "descriptor", "descriptor_updated_at"}))

	repo := NewRosterRepository(mock)
	roster, err := repo.RosterForLesson(context.Background(), lessonID)

	require.NoError(t, err, "an existing lesson with no enrollments is not an error")
	assert.Empty(t, roster)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepository_IsEnrolled(t *testing.T) {
	studentID := uuid.New()
	lessonID := uuid.New()

	tests := []struct {
		name     string
		enrolled bool
	}{
		{name: "enrolled student", enrolled: true},
		{name: "unknown student", enrolled: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			expectLessonExists(mock, lessonID)
			mock.ExpectQuery(`SELECT EXISTS`).
				WithArgs(studentID, lessonID).
				WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(tt.enrolled))

			repo := NewRosterRepository(mock)
			enrolled, err := repo.IsEnrolled(context.Background(), studentID, lessonID)

			require.NoError(t, err)
			assert.Equal(t, tt.enrolled, enrolled)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRosterRepository_SaveDescriptor(t *testing.T) {
	studentID := uuid.New()
	descriptor := make(domain.Descriptor, domain.DescriptorDim)
	for i := range descriptor {
		descriptor[i] = 0.5
	}

	mock := newMockPool(t)
	mock.ExpectExec(`UPDATE students`).
		WithArgs(studentID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewRosterRepository(mock)
	err := repo.SaveDescriptor(context.Background(), studentID, descriptor)

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepository_SaveDescriptor_RejectsMalformed(t *testing.T) {
	mock := newMockPool(t)
	repo := NewRosterRepository(mock)

	err := repo.SaveDescriptor(context.Background(), uuid.New(), domain.Descriptor{0.1, 0.2})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	require.NoError(t, mock.ExpectationsWereMet(), "a malformed descriptor must never reach the database")
}

func TestRosterRepository_SaveDescriptor_StudentNotFound(t *testing.T) {
	studentID := uuid.New()
	descriptor := make(domain.Descriptor, domain.DescriptorDim)

	mock := newMockPool(t)
	mock.ExpectExec(`UPDATE students`).
		WithArgs(studentID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewRosterRepository(mock)
	err := repo.SaveDescriptor(context.Background(), studentID, descriptor)

	assert.ErrorIs(t, err, domain.ErrStudentNotFound)
}

// AttendanceRepository tests

func attendanceColumns() []string {
	return []string{"id", "student_id", "lesson_id", "status", "marked_at", "provenance", "note", "created_at", "updated_at"}
}

func TestAttendanceRepository_Find(t *testing.T) {
	recordID := uuid.New()
	studentID := uuid.New()
	lessonID := uuid.New()
	now := time.Now()

	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT id, student_id, lesson_id, status, marked_at, provenance, note, created_at, updated_at FROM attendance_records`).
		WithArgs(studentID, lessonID).
		WillReturnRows(pgxmock.NewRows(attendanceColumns()).
			AddRow(recordID, studentID, lessonID, domain.StatusPresent, now, domain.ProvenanceAutomatic, "", now, now))

	repo := NewAttendanceRepository(mock)
	record, err := repo.Find(context.Background(), studentID, lessonID)

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, recordID, record.ID)
	assert.Equal(t, domain.StatusPresent, record.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_Find_Absent(t *testing.T) {
	studentID := uuid.New()
	lessonID := uuid.New()

	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT id, student_id, lesson_id, status, marked_at, provenance, note, created_at, updated_at FROM attendance_records`).
		WithArgs(studentID, lessonID).
		WillReturnError(pgx.ErrNoRows)

	repo := NewAttendanceRepository(mock)
	record, err := repo.Find(context.Background(), studentID, lessonID)

	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestAttendanceRepository_Upsert(t *testing.T) {
	studentID := uuid.New()
	lessonID := uuid.New()
	now := time.Now()

	record := &domain.AttendanceRecord{
		StudentID:  studentID,
		LessonID:   lessonID,
		Status:     domain.StatusPresent,
		MarkedAt:   now,
		Provenance: domain.ProvenanceAutomatic,
	}

	mock := newMockPool(t)
	mock.ExpectQuery(`INSERT INTO attendance_records .+ ON CONFLICT \(student_id, lesson_id\) DO UPDATE`).
		WithArgs(pgxmock.AnyArg(), studentID, lessonID, domain.StatusPresent, now, domain.ProvenanceAutomatic, "").
		WillReturnRows(pgxmock.NewRows(attendanceColumns()).
			AddRow(uuid.New(), studentID, lessonID, domain.StatusPresent, now, domain.ProvenanceAutomatic, "", now, now))

	repo := NewAttendanceRepository(mock)
	persisted, err := repo.Upsert(context.Background(), record)

	require.NoError(t, err)
	assert.Equal(t, studentID, persisted.StudentID)
	assert.Equal(t, domain.StatusPresent, persisted.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_Upsert_Error(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery(`INSERT INTO attendance_records`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	repo := NewAttendanceRepository(mock)
	_, err := repo.Upsert(context.Background(), &domain.AttendanceRecord{
		StudentID: uuid.New(),
		LessonID:  uuid.New(),
		Status:    domain.StatusPresent,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert attendance record")
}

func TestAttendanceRepository_ListByLesson(t *testing.T) {
	lessonID := uuid.New()
	now := time.Now()

	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT id, student_id, lesson_id, status, marked_at, provenance, note, created_at, updated_at FROM attendance_records WHERE lesson_id = \$1`).
		WithArgs(lessonID).
		WillReturnRows(pgxmock.NewRows(attendanceColumns()).
			AddRow(uuid.New(), uuid.New(), lessonID, domain.StatusPresent, now, domain.ProvenanceAutomatic, "", now, now).
			AddRow(uuid.New(), uuid.New(), lessonID, domain.StatusAbsent, now.Add(-time.Minute), domain.ProvenanceManual, "sick", now, now))

	repo := NewAttendanceRepository(mock)
	records, err := repo.ListByLesson(context.Background(), lessonID)

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.StatusPresent, records[0].Status)
	assert.Equal(t, "sick", records[1].Note)
}

// RecognitionEventRepository tests

func TestRecognitionEventRepository_Create(t *testing.T) {
	lessonID := uuid.New()
	studentID := uuid.New()
	distance := 0.41
	confidence := 0.59

	event := &domain.RecognitionEvent{
		LessonID:   lessonID,
		StudentID:  &studentID,
		Matched:    true,
		Distance:   &distance,
		Confidence: &confidence,
	}

	mock := newMockPool(t)
	mock.ExpectQuery(`INSERT INTO recognition_events`).
		WithArgs(pgxmock.AnyArg(), lessonID, &studentID, true, &distance, &confidence).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	repo := NewRecognitionEventRepository(mock)
	err := repo.Create(context.Background(), event)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecognitionEventRepository_ListByLesson(t *testing.T) {
	lessonID := uuid.New()
	now := time.Now()

	mock := newMockPool(t)
	mock.ExpectQuery(`SELECT id, lesson_id, student_id, matched, distance, confidence, created_at FROM recognition_events`).
		WithArgs(lessonID, 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "lesson_id", "student_id", "matched", "distance", "confidence", "created_at"}).
			AddRow(uuid.New(), lessonID, nil, false, nil, nil, now))

	repo := NewRecognitionEventRepository(mock)
	events, err := repo.ListByLesson(context.Background(), lessonID, 0)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.False(t, events[0].Matched)
	assert.Nil(t, events[0].StudentID)
}
