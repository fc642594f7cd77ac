package domain

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceStatus is the presence state of a student in a lesson.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
)

// Provenance records whether an attendance mark came from an operator or
// from the recognition loop.
type Provenance string

const (
	ProvenanceManual    Provenance = "manual"
	ProvenanceAutomatic Provenance = "automatic"
)

// AttendanceRecord is the presence state for one (student, lesson) pair.
// At most one record exists per pair; re-marks update in place.
type AttendanceRecord struct {
	ID         uuid.UUID        `json:"id"`
	StudentID  uuid.UUID        `json:"student_id"`
	LessonID   uuid.UUID        `json:"lesson_id"`
	Status     AttendanceStatus `json:"status"`
	MarkedAt   time.Time        `json:"marked_at"`
	Provenance Provenance       `json:"provenance"`
	Note       string           `json:"note,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}
