package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/domain"
)

// RosterRepositoryInterface defines operations for roster data access
type RosterRepositoryInterface interface {
	RosterForLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.RosterEntry, error)
	IsEnrolled(ctx context.Context, studentID, lessonID uuid.UUID) (bool, error)
	SaveDescriptor(ctx context.Context, studentID uuid.UUID, descriptor domain.Descriptor) error
}

// AttendanceRepositoryInterface defines operations for attendance data access
type AttendanceRepositoryInterface interface {
	Find(ctx context.Context, studentID, lessonID uuid.UUID) (*domain.AttendanceRecord, error)
	Upsert(ctx context.Context, record *domain.AttendanceRecord) (*domain.AttendanceRecord, error)
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.AttendanceRecord, error)
}

// RecognitionEventRepositoryInterface defines operations for recognition
// event persistence
type RecognitionEventRepositoryInterface interface {
	Create(ctx context.Context, event *domain.RecognitionEvent) error
	ListByLesson(ctx context.Context, lessonID uuid.UUID, limit int) ([]domain.RecognitionEvent, error)
}
