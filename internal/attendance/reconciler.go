// Package attendance converts a matched identity (or a manual selection)
// into a persisted, duplicate-safe attendance state change.
package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/audit"
	"github.com/aulavista/facemark/internal/domain"
)

// EnrollmentChecker validates roster membership for a lesson. It reports
// domain.ErrLessonNotFound when the lesson itself does not exist.
type EnrollmentChecker interface {
	IsEnrolled(ctx context.Context, studentID, lessonID uuid.UUID) (bool, error)
}

// Repository is the persistence contract for attendance records.
//
// Find returns (nil, nil) when no record exists for the pair. Upsert must
// enforce at most one record per (student, lesson) pair, including under
// concurrent calls for the same pair.
type Repository interface {
	Find(ctx context.Context, studentID, lessonID uuid.UUID) (*domain.AttendanceRecord, error)
	Upsert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
}

// Reconciler performs idempotent attendance upserts. It is stateless and
// safe for concurrent use across independent lessons; the unit of
// coordination is the (student, lesson) pair enforced by the Repository.
type Reconciler struct {
	enrollments EnrollmentChecker
	records     Repository
	auditor     audit.Logger
	logger      *slog.Logger
	now         func() time.Time
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconcilerLogger sets the reconciler logger.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.now = now
	}
}

// NewReconciler creates a reconciler over the given collaborators.
func NewReconciler(enrollments EnrollmentChecker, records Repository, auditor audit.Logger, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		enrollments: enrollments,
		records:     records,
		auditor:     auditor,
		logger:      slog.Default(),
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// MarkPresent upserts a present record for (studentID, lessonID). The first
// mark for a pair creates the record; every subsequent mark updates it in
// place with the new timestamp, provenance and note. Fails with
// domain.ErrNotEnrolled when the student is not an active roster member and
// with domain.ErrLessonNotFound when the lesson does not exist; no partial
// state is written in either case.
func (r *Reconciler) MarkPresent(ctx context.Context, studentID, lessonID uuid.UUID, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error) {
	return r.mark(ctx, studentID, lessonID, domain.StatusPresent, provenance, note)
}

// MarkAbsent upserts an absent record, used for manual corrections by an
// operator. Same preconditions and upsert semantics as MarkPresent.
func (r *Reconciler) MarkAbsent(ctx context.Context, studentID, lessonID uuid.UUID, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error) {
	return r.mark(ctx, studentID, lessonID, domain.StatusAbsent, provenance, note)
}

func (r *Reconciler) mark(ctx context.Context, studentID, lessonID uuid.UUID, status domain.AttendanceStatus, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error) {
	enrolled, err := r.enrollments.IsEnrolled(ctx, studentID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if !enrolled {
		return nil, domain.ErrNotEnrolled
	}

	existing, err := r.records.Find(ctx, studentID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("find attendance record: %w", err)
	}

	now := r.now().UTC()
	record := &domain.AttendanceRecord{
		ID:         uuid.New(),
		StudentID:  studentID,
		LessonID:   lessonID,
		Status:     status,
		MarkedAt:   now,
		Provenance: provenance,
		Note:       note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	created := existing == nil
	if !created {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}

	persisted, err := r.records.Upsert(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("upsert attendance record: %w", err)
	}

	r.emit(ctx, persisted, created)
	return persisted, nil
}

// emit records one audit event per reconciliation call. Audit delivery is
// fire-and-forget; a failed emit never rolls back the attendance write.
func (r *Reconciler) emit(ctx context.Context, record *domain.AttendanceRecord, created bool) {
	eventType := audit.EventAttendanceUpdated
	if created {
		eventType = audit.EventAttendanceMarked
	}

	err := r.auditor.Log(ctx, audit.Event{
		EventType: eventType,
		StudentID: record.StudentID.String(),
		LessonID:  record.LessonID.String(),
		Success:   true,
		Metadata: map[string]string{
			"status":     string(record.Status),
			"provenance": string(record.Provenance),
		},
	})
	if err != nil {
		r.logger.WarnContext(ctx, "failed to record audit event",
			slog.String("error", err.Error()),
			slog.String("student_id", record.StudentID.String()),
			slog.String("lesson_id", record.LessonID.String()),
		)
	}
}
