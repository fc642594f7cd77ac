package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulavista/facemark/internal/domain"
)

type fakeReconciler struct {
	err   error
	calls []struct {
		status     domain.AttendanceStatus
		provenance domain.Provenance
	}
}

func (f *fakeReconciler) mark(studentID, lessonID uuid.UUID, status domain.AttendanceStatus, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, struct {
		status     domain.AttendanceStatus
		provenance domain.Provenance
	}{status, provenance})

	return &domain.AttendanceRecord{
		ID:         uuid.New(),
		StudentID:  studentID,
		LessonID:   lessonID,
		Status:     status,
		Provenance: provenance,
		Note:       note,
	}, nil
}

func (f *fakeReconciler) MarkPresent(_ context.Context, studentID, lessonID uuid.UUID, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error) {
	return f.mark(studentID, lessonID, domain.StatusPresent, provenance, note)
}

func (f *fakeReconciler) MarkAbsent(_ context.Context, studentID, lessonID uuid.UUID, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error) {
	return f.mark(studentID, lessonID, domain.StatusAbsent, provenance, note)
}

type fakeLister struct {
	records []domain.AttendanceRecord
	err     error
}

func (f *fakeLister) ListByLesson(_ context.Context, _ uuid.UUID) ([]domain.AttendanceRecord, error) {
	return f.records, f.err
}

func TestAttendanceService_Mark(t *testing.T) {
	tests := []struct {
		name   string
		status domain.AttendanceStatus
	}{
		{name: "present", status: domain.StatusPresent},
		{name: "absent", status: domain.StatusAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reconciler := &fakeReconciler{}
			notifier := &fakeNotifier{}
			svc := NewAttendanceService(reconciler, &fakeLister{}, notifier)

			record, err := svc.Mark(context.Background(), uuid.New(), uuid.New(), tt.status, "corrected by teacher")

			require.NoError(t, err)
			assert.Equal(t, tt.status, record.Status)
			assert.Equal(t, domain.ProvenanceManual, record.Provenance)

			require.Len(t, reconciler.calls, 1)
			assert.Equal(t, domain.ProvenanceManual, reconciler.calls[0].provenance)
			assert.Equal(t, []string{"attendance.marked"}, notifier.notifications)
		})
	}
}

func TestAttendanceService_MarkInvalidStatus(t *testing.T) {
	reconciler := &fakeReconciler{}
	notifier := &fakeNotifier{}
	svc := NewAttendanceService(reconciler, &fakeLister{}, notifier)

	_, err := svc.Mark(context.Background(), uuid.New(), uuid.New(), domain.AttendanceStatus("late"), "")

	assert.ErrorIs(t, err, domain.ErrValidationFailed)
	assert.Empty(t, reconciler.calls)
	assert.Empty(t, notifier.notifications)
}

func TestAttendanceService_MarkNotEnrolled(t *testing.T) {
	reconciler := &fakeReconciler{err: domain.ErrNotEnrolled}
	notifier := &fakeNotifier{}
	svc := NewAttendanceService(reconciler, &fakeLister{}, notifier)

	_, err := svc.Mark(context.Background(), uuid.New(), uuid.New(), domain.StatusPresent, "")

	assert.ErrorIs(t, err, domain.ErrNotEnrolled)
	assert.Empty(t, notifier.notifications, "failed marks must not notify")
}

func TestAttendanceService_ListByLesson(t *testing.T) {
	records := []domain.AttendanceRecord{
		{ID: uuid.New(), Status: domain.StatusPresent},
		{ID: uuid.New(), Status: domain.StatusAbsent},
	}
	svc := NewAttendanceService(&fakeReconciler{}, &fakeLister{records: records}, nil)

	got, err := svc.ListByLesson(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, records, got)
}
