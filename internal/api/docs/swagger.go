package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
	"github.com/go-swagno/swagno/components/parameter"
)

// RecognizeRequestBody is the payload for a recognition attempt
type RecognizeRequestBody struct {
	LessonID   string    `json:"lesson_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Descriptor []float64 `json:"descriptor"`
	Threshold  *float64  `json:"threshold,omitempty" example:"0.6"`
}

// RecognizeResponseBody is the outcome of a recognition attempt
type RecognizeResponseBody struct {
	Matched    bool                 `json:"matched" example:"true"`
	StudentID  string               `json:"student_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name       string               `json:"name,omitempty" example:"Ana Souza"`
	Distance   float64              `json:"distance,omitempty" example:"0.42"`
	Confidence float64              `json:"confidence,omitempty" example:"0.58"`
	Attendance AttendanceRecordBody `json:"attendance,omitempty"`
}

// AttendanceRecordBody is a persisted attendance record
type AttendanceRecordBody struct {
	ID         string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	StudentID  string `json:"student_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	LessonID   string `json:"lesson_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status     string `json:"status" example:"present"`
	MarkedAt   string `json:"marked_at" example:"2024-03-01T08:05:00Z"`
	Provenance string `json:"provenance" example:"automatic"`
	Note       string `json:"note,omitempty" example:"recognized with confidence 0.92"`
}

// MarkRequestBody is the payload for a manual attendance mark
type MarkRequestBody struct {
	StudentID string `json:"student_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status    string `json:"status" example:"present"`
	Note      string `json:"note,omitempty" example:"arrived late, corrected by teacher"`
}

// AttendanceListBody wraps a lesson's attendance records
type AttendanceListBody struct {
	Records []AttendanceRecordBody `json:"records"`
	Count   int                    `json:"count" example:"23"`
}

// RegisterDescriptorBody is the payload for descriptor registration
type RegisterDescriptorBody struct {
	Descriptor []float64 `json:"descriptor"`
	Confirmed  bool      `json:"confirmed" example:"true"`
}

// RecognitionEventBody is one entry of the recognition trail
type RecognitionEventBody struct {
	ID         string  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	LessonID   string  `json:"lesson_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	StudentID  string  `json:"student_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Matched    bool    `json:"matched" example:"true"`
	Distance   float64 `json:"distance,omitempty" example:"0.42"`
	Confidence float64 `json:"confidence,omitempty" example:"0.58"`
	CreatedAt  string  `json:"created_at" example:"2024-03-01T08:05:00Z"`
}

// RecognitionEventListBody wraps the recognition trail
type RecognitionEventListBody struct {
	Events []RecognitionEventBody `json:"events"`
	Count  int                    `json:"count" example:"10"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// HealthResponseBody is the liveness response
type HealthResponseBody struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

// ReadyResponseBody is the readiness response
type ReadyResponseBody struct {
	Status   string `json:"status" example:"ready"`
	Database string `json:"database" example:"ok"`
	Provider string `json:"provider" example:"ok"`
}

// NewSwagger creates and configures the Swagger documentation
func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Facemark Attendance API",
		Version:     "v1.0.0",
		Description: "Face-recognition attendance marking for lessons: probe descriptors are matched against the lesson roster and matched students are marked present.",
		Host:        "localhost:3000",
		Path:        "/v1",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /v1/recognitions - Recognize a probe descriptor
		endpoint.New(
			endpoint.POST,
			"/recognitions",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("Recognize a probe descriptor"),
			endpoint.WithDescription("Matches the probe descriptor against the lesson roster. On a match the student is marked present with automatic provenance. A no-match is a normal 200 outcome."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(RecognizeRequestBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecognizeResponseBody{}, "200", "Recognition completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_THRESHOLD", Message: "Threshold must be between 0 and 1"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DIMENSION_MISMATCH", Message: "Descriptor is empty or malformed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "LESSON_NOT_FOUND", Message: "Lesson not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NOT_ENROLLED", Message: "Student is not actively enrolled in this lesson"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/lessons/{lessonId}/recognitions - Recognition trail
		endpoint.New(
			endpoint.GET,
			"/lessons/{lessonId}/recognitions",
			endpoint.WithTags("Recognition"),
			endpoint.WithSummary("List recent recognition attempts"),
			endpoint.WithDescription("Returns the lesson's recognition trail, newest first."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("lessonId", parameter.Path, parameter.WithDescription("Lesson identifier")),
				parameter.IntParam("limit", parameter.Query, parameter.WithDescription("Maximum number of events (default: 50)")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(RecognitionEventListBody{}, "200", "Events retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid lesson id"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/lessons/{lessonId}/attendance - Manual mark
		endpoint.New(
			endpoint.POST,
			"/lessons/{lessonId}/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("Manually mark a student present or absent"),
			endpoint.WithDescription("Upserts the attendance record for the (student, lesson) pair with manual provenance. Re-marks update the existing record in place."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("lessonId", parameter.Path, parameter.WithDescription("Lesson identifier")),
			),
			endpoint.WithBody(MarkRequestBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceRecordBody{}, "200", "Attendance marked"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "LESSON_NOT_FOUND", Message: "Lesson not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NOT_ENROLLED", Message: "Student is not actively enrolled in this lesson"}, "409", "Conflict"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /v1/lessons/{lessonId}/attendance - List attendance
		endpoint.New(
			endpoint.GET,
			"/lessons/{lessonId}/attendance",
			endpoint.WithTags("Attendance"),
			endpoint.WithSummary("List a lesson's attendance records"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("lessonId", parameter.Path, parameter.WithDescription("Lesson identifier")),
			),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(AttendanceListBody{}, "200", "Records retrieved successfully"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid lesson id"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// POST /v1/students/{studentId}/descriptor - Register descriptor
		endpoint.New(
			endpoint.POST,
			"/students/{studentId}/descriptor",
			endpoint.WithTags("Students"),
			endpoint.WithSummary("Register a student's reference descriptor"),
			endpoint.WithDescription("Stores a confirmed capture as the student's reference descriptor. The confirmed flag is the explicit operator approval; unconfirmed captures are rejected."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithParams(
				parameter.StrParam("studentId", parameter.Path, parameter.WithDescription("Student identifier")),
			),
			endpoint.WithBody(RegisterDescriptorBody{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(struct{}{}, "204", "Descriptor registered"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Invalid request"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DIMENSION_MISMATCH", Message: "Descriptor is empty or malformed"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "STUDENT_NOT_FOUND", Message: "Student not found"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred"}, "500", "Internal Server Error"),
			}),
		),

		// GET /health - Liveness
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness check"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponseBody{}, "200", "Service is alive"),
			}),
		),

		// GET /ready - Readiness
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness check"),
			endpoint.WithDescription("Reports database connectivity and embedding provider load state."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReadyResponseBody{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ReadyResponseBody{Status: "degraded"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
