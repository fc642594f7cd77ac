package domain

import (
	"time"

	"github.com/google/uuid"
)

// RecognitionEvent is one recognition attempt outcome kept for lesson-level
// review: who was recognized (if anyone) and how close the match was.
type RecognitionEvent struct {
	ID         uuid.UUID  `json:"id"`
	LessonID   uuid.UUID  `json:"lesson_id"`
	StudentID  *uuid.UUID `json:"student_id,omitempty"`
	Matched    bool       `json:"matched"`
	Distance   *float64   `json:"distance,omitempty"`
	Confidence *float64   `json:"confidence,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
