package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/domain"
)

// Reconciler is the manual-marking contract, covering both directions an
// operator can correct a record in.
type Reconciler interface {
	MarkPresent(ctx context.Context, studentID, lessonID uuid.UUID, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error)
	MarkAbsent(ctx context.Context, studentID, lessonID uuid.UUID, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error)
}

// AttendanceLister reads attendance records for review.
type AttendanceLister interface {
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.AttendanceRecord, error)
}

// AttendanceService exposes teacher-facing attendance operations: manual
// marks and lesson review.
type AttendanceService struct {
	reconciler Reconciler
	records    AttendanceLister
	notifier   LessonNotifier
}

// NewAttendanceService creates an attendance service.
func NewAttendanceService(reconciler Reconciler, records AttendanceLister, notifier LessonNotifier) *AttendanceService {
	return &AttendanceService{
		reconciler: reconciler,
		records:    records,
		notifier:   notifier,
	}
}

// Mark upserts a manual attendance record for the student. Manual marks
// always carry manual provenance so corrections are distinguishable from
// recognition-driven marks.
func (s *AttendanceService) Mark(ctx context.Context, studentID, lessonID uuid.UUID, status domain.AttendanceStatus, note string) (*domain.AttendanceRecord, error) {
	var (
		record *domain.AttendanceRecord
		err    error
	)

	switch status {
	case domain.StatusAbsent:
		record, err = s.reconciler.MarkAbsent(ctx, studentID, lessonID, domain.ProvenanceManual, note)
	case domain.StatusPresent:
		record, err = s.reconciler.MarkPresent(ctx, studentID, lessonID, domain.ProvenanceManual, note)
	default:
		return nil, domain.ErrValidationFailed
	}
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyLesson(lessonID, "attendance.marked", record)
	}

	return record, nil
}

// ListByLesson returns the lesson's attendance records for review.
func (s *AttendanceService) ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.AttendanceRecord, error) {
	return s.records.ListByLesson(ctx, lessonID)
}
