package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/audit"
	"github.com/aulavista/facemark/internal/domain"
	"github.com/aulavista/facemark/internal/matcher"
)

// RosterProvider supplies the matchable roster for a lesson.
type RosterProvider interface {
	RosterForLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.RosterEntry, error)
	SaveDescriptor(ctx context.Context, studentID uuid.UUID, descriptor domain.Descriptor) error
}

// AttendanceMarker converts a matched identity into a persisted record.
type AttendanceMarker interface {
	MarkPresent(ctx context.Context, studentID, lessonID uuid.UUID, provenance domain.Provenance, note string) (*domain.AttendanceRecord, error)
}

// RecognitionEventStore persists recognition attempt outcomes.
type RecognitionEventStore interface {
	Create(ctx context.Context, event *domain.RecognitionEvent) error
}

// LessonNotifier pushes live feedback to UIs watching a lesson.
type LessonNotifier interface {
	NotifyLesson(lessonID uuid.UUID, event string, payload any)
}

// RecognitionResult is the outcome of one probe against a lesson roster.
type RecognitionResult struct {
	Match      domain.MatchResult       `json:"match"`
	Attendance *domain.AttendanceRecord `json:"attendance,omitempty"`
}

// RecognitionService runs the probe -> match -> mark pipeline for a lesson.
type RecognitionService struct {
	roster    RosterProvider
	marker    AttendanceMarker
	events    RecognitionEventStore
	auditor   audit.Logger
	notifier  LessonNotifier
	threshold float64
	logger    *slog.Logger
}

// RecognitionOption configures a RecognitionService.
type RecognitionOption func(*RecognitionService)

// WithThreshold overrides the default match threshold.
func WithThreshold(threshold float64) RecognitionOption {
	return func(s *RecognitionService) {
		s.threshold = threshold
	}
}

// WithNotifier sets the live-feedback notifier.
func WithNotifier(notifier LessonNotifier) RecognitionOption {
	return func(s *RecognitionService) {
		s.notifier = notifier
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) RecognitionOption {
	return func(s *RecognitionService) {
		s.logger = logger
	}
}

// NewRecognitionService creates a recognition service.
func NewRecognitionService(
	roster RosterProvider,
	marker AttendanceMarker,
	events RecognitionEventStore,
	auditor audit.Logger,
	opts ...RecognitionOption,
) *RecognitionService {
	s := &RecognitionService{
		roster:    roster,
		marker:    marker,
		events:    events,
		auditor:   auditor,
		threshold: matcher.DefaultThreshold,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Recognize matches one probe descriptor against the lesson roster and, on a
// match, marks the student present with automatic provenance. A NoMatch is a
// normal outcome, not an error. thresholdOverride tightens or loosens the
// match acceptance for this call only; nil keeps the configured default.
func (s *RecognitionService) Recognize(ctx context.Context, lessonID uuid.UUID, probe domain.Descriptor, thresholdOverride *float64) (*RecognitionResult, error) {
	threshold := s.threshold
	if thresholdOverride != nil {
		if *thresholdOverride <= 0 || *thresholdOverride > 1 {
			return nil, domain.ErrInvalidThreshold
		}
		threshold = *thresholdOverride
	}

	roster, err := s.roster.RosterForLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	match, err := matcher.Match(probe, roster, threshold)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, lessonID, match)

	result := &RecognitionResult{Match: match}

	if !match.Matched {
		s.emitAudit(ctx, audit.EventFaceNoMatch, "", lessonID, false, nil)
		s.notify(lessonID, "recognition.completed", result)
		return result, nil
	}

	s.emitAudit(ctx, audit.EventFaceRecognized, match.Identity.ID.String(), lessonID, true, map[string]string{
		"distance":   fmt.Sprintf("%.4f", match.Distance),
		"confidence": fmt.Sprintf("%.4f", match.Confidence),
	})

	note := fmt.Sprintf("recognized with confidence %.2f", match.Confidence)
	record, err := s.marker.MarkPresent(ctx, match.Identity.ID, lessonID, domain.ProvenanceAutomatic, note)
	if err != nil {
		return nil, fmt.Errorf("mark present: %w", err)
	}

	result.Attendance = record
	s.notify(lessonID, "attendance.marked", result)
	return result, nil
}

// RegisterDescriptor stores a confirmed capture as the student's reference
// descriptor. Validation happens at the persistence boundary.
func (s *RecognitionService) RegisterDescriptor(ctx context.Context, studentID uuid.UUID, descriptor domain.Descriptor) error {
	if err := s.roster.SaveDescriptor(ctx, studentID, descriptor); err != nil {
		s.emitAudit(ctx, audit.EventDescriptorRegistered, studentID.String(), uuid.Nil, false, map[string]string{
			"error": err.Error(),
		})
		return err
	}

	s.emitAudit(ctx, audit.EventDescriptorRegistered, studentID.String(), uuid.Nil, true, nil)
	return nil
}

// recordEvent keeps recognition telemetry. Failures are logged, never
// surfaced; telemetry must not abort a recognition in progress.
func (s *RecognitionService) recordEvent(ctx context.Context, lessonID uuid.UUID, match domain.MatchResult) {
	event := &domain.RecognitionEvent{
		LessonID: lessonID,
		Matched:  match.Matched,
	}
	if match.Matched {
		studentID := match.Identity.ID
		distance := match.Distance
		confidence := match.Confidence
		event.StudentID = &studentID
		event.Distance = &distance
		event.Confidence = &confidence
	}

	if err := s.events.Create(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record recognition event",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()),
		)
	}
}

func (s *RecognitionService) emitAudit(ctx context.Context, eventType audit.EventType, studentID string, lessonID uuid.UUID, success bool, metadata map[string]string) {
	event := audit.Event{
		EventType: eventType,
		StudentID: studentID,
		Success:   success,
		Metadata:  metadata,
	}
	if lessonID != uuid.Nil {
		event.LessonID = lessonID.String()
	}

	if err := s.auditor.Log(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event",
			slog.String("error", err.Error()),
			slog.String("event_type", string(eventType)),
		)
	}
}

func (s *RecognitionService) notify(lessonID uuid.UUID, event string, payload any) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyLesson(lessonID, event, payload)
}
