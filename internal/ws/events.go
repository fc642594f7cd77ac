package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAttendanceMarked     EventType = "attendance.marked"
	EventRecognitionCompleted EventType = "recognition.completed"
	EventDescriptorRegistered EventType = "descriptor.registered"
)

type Event struct {
	LessonID  uuid.UUID   `json:"-"`
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}
