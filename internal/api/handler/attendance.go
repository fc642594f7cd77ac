package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/domain"
)

// AttendanceService covers manual marks and lesson review.
type AttendanceService interface {
	Mark(ctx context.Context, studentID, lessonID uuid.UUID, status domain.AttendanceStatus, note string) (*domain.AttendanceRecord, error)
	ListByLesson(ctx context.Context, lessonID uuid.UUID) ([]domain.AttendanceRecord, error)
}

// AttendanceHandler handles attendance requests
type AttendanceHandler struct {
	service AttendanceService
	logger  *slog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler instance
func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger,
	}
}

// MarkRequest is the payload for a manual attendance mark
type MarkRequest struct {
	StudentID string `json:"student_id"`
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
}

// AttendanceListResponse wraps a lesson's attendance records
type AttendanceListResponse struct {
	Records []domain.AttendanceRecord `json:"records"`
	Count   int                       `json:"count"`
}

// Mark POST /v1/lessons/:lessonId/attendance - manually mark a student
// present or absent
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("lessonId must be a valid UUID"))
	}

	var req MarkRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("student_id must be a valid UUID"))
	}

	record, err := h.service.Mark(c.Context(), studentID, lessonID, domain.AttendanceStatus(req.Status), req.Note)
	if err != nil {
		return err
	}

	return c.JSON(record)
}

// List GET /v1/lessons/:lessonId/attendance - attendance records for a lesson
func (h *AttendanceHandler) List(c *fiber.Ctx) error {
	lessonID, err := uuid.Parse(c.Params("lessonId"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("lessonId must be a valid UUID"))
	}

	records, err := h.service.ListByLesson(c.Context(), lessonID)
	if err != nil {
		return err
	}

	return c.JSON(AttendanceListResponse{
		Records: records,
		Count:   len(records),
	})
}
