package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/domain"
	"github.com/aulavista/facemark/internal/service"
)

// RecognitionService runs probe descriptors against lesson rosters.
type RecognitionService interface {
	Recognize(ctx context.Context, lessonID uuid.UUID, probe domain.Descriptor, thresholdOverride *float64) (*service.RecognitionResult, error)
}

// RecognitionEventLister reads the recognition attempt trail.
type RecognitionEventLister interface {
	ListByLesson(ctx context.Context, lessonID uuid.UUID, limit int) ([]domain.RecognitionEvent, error)
}

// RecognitionHandler handles recognition requests
type RecognitionHandler struct {
	service RecognitionService
	events  RecognitionEventLister
	logger  *slog.Logger
}

// NewRecognitionHandler creates a new RecognitionHandler instance
func NewRecognitionHandler(service RecognitionService, events RecognitionEventLister, logger *slog.Logger) *RecognitionHandler {
	return &RecognitionHandler{
		service: service,
		events:  events,
		logger:  logger,
	}
}

// RecognizeRequest is the payload for a recognition attempt
type RecognizeRequest struct {
	LessonID   string    `json:"lesson_id"`
	Descriptor []float64 `json:"descriptor"`
	Threshold  *float64  `json:"threshold,omitempty"`
}

// RecognizeResponse is the outcome returned to the client
type RecognizeResponse struct {
	Matched    bool                     `json:"matched"`
	StudentID  string                   `json:"student_id,omitempty"`
	Name       string                   `json:"name,omitempty"`
	Distance   *float64                 `json:"distance,omitempty"`
	Confidence *float64                 `json:"confidence,omitempty"`
	Attendance *domain.AttendanceRecord `json:"attendance,omitempty"`
}

// RecognitionEventsResponse wraps the lesson's recognition trail
type RecognitionEventsResponse struct {
	Events []domain.RecognitionEvent `json:"events"`
	Count  int                       `json:"count"`
}

// Recognize POST /v1/recognitions - match a probe descriptor against a
// lesson roster and mark the matched student present
func (h *RecognitionHandler) Recognize(c *fiber.Ctx) error {
	var req RecognizeRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	lessonID, err := uuid.Parse(req.LessonID)
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("lesson_id must be a valid UUID"))
	}

	if len(req.Descriptor) == 0 {
		return domain.ErrValidationFailed.WithError(errors.New("descriptor is required"))
	}

	result, err := h.service.Recognize(c.Context(), lessonID, domain.Descriptor(req.Descriptor), req.Threshold)
	if err != nil {
		return err
	}

	resp := RecognizeResponse{
		Matched:    result.Match.Matched,
		Attendance: result.Attendance,
	}
	if result.Match.Matched {
		distance := result.Match.Distance
		confidence := result.Match.Confidence
		resp.StudentID = result.Match.Identity.ID.String()
		resp.Name = result.Match.Identity.DisplayName
		resp.Distance = &distance
		resp.Confidence = &confidence
	}

	return c.JSON(resp)
}

// ListEvents GET /v1/lessons/:lessonId/recognitions - recent recognition
// attempts for a lesson
func (h *RecognitionHandler) ListEvents(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("lessonId must be a valid UUID"))
	}

	limit := c.QueryInt("limit", 0)

	events, err := h.events.ListByLesson(c.Context(), lessonID, limit)
	if err != nil {
		return err
	}

	return c.JSON(RecognitionEventsResponse{
		Events: events,
		Count:  len(events),
	})
}
