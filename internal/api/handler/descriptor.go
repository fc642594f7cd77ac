package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aulavista/facemark/internal/domain"
)

// DescriptorRegistrar stores confirmed reference descriptors.
type DescriptorRegistrar interface {
	RegisterDescriptor(ctx context.Context, studentID uuid.UUID, descriptor domain.Descriptor) error
}

// DescriptorHandler handles reference descriptor registration
type DescriptorHandler struct {
	service DescriptorRegistrar
	logger  *slog.Logger
}

// NewDescriptorHandler creates a new DescriptorHandler instance
func NewDescriptorHandler(service DescriptorRegistrar, logger *slog.Logger) *DescriptorHandler {
	return &DescriptorHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterDescriptorRequest is the payload for descriptor registration.
// Confirmed is the explicit operator approval of the captured frame; an
// unconfirmed capture must never become the reference descriptor.
type RegisterDescriptorRequest struct {
	Descriptor []float64 `json:"descriptor"`
	Confirmed  bool      `json:"confirmed"`
}

// Register POST /v1/students/:studentId/descriptor - store a confirmed
// capture as the student's reference descriptor
func (h *DescriptorHandler) Register(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("studentId must be a valid UUID"))
	}

	var req RegisterDescriptorRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}

	if !req.Confirmed {
		return domain.ErrValidationFailed.WithError(errors.New("descriptor must be explicitly confirmed"))
	}

	if err := h.service.RegisterDescriptor(c.Context(), studentID, domain.Descriptor(req.Descriptor)); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
