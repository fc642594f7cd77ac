package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"

	"github.com/aulavista/facemark/internal/api/docs"
	"github.com/aulavista/facemark/internal/api/handler"
	"github.com/aulavista/facemark/internal/api/middleware"
	"github.com/aulavista/facemark/internal/attendance"
	"github.com/aulavista/facemark/internal/audit"
	"github.com/aulavista/facemark/internal/provider"
	"github.com/aulavista/facemark/internal/repository"
	"github.com/aulavista/facemark/internal/service"
	"github.com/aulavista/facemark/internal/ws"
)

type Dependencies struct {
	RosterRepo      *repository.RosterRepository
	AttendanceRepo  *repository.AttendanceRepository
	RecognitionRepo *repository.RecognitionEventRepository
	Provider        provider.EmbeddingProvider
	DB              *pgxpool.Pool
	MatchThreshold  float64
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
	wsHub  *ws.Hub
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Facemark API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	v1 := r.app.Group("/v1")

	// Only configure application routes if dependencies were provided
	if r.deps != nil {
		r.wsHub = ws.NewHub()
		go r.wsHub.Run()

		auditor := audit.NewSlogLogger(r.logger)

		reconciler := attendance.NewReconciler(
			r.deps.RosterRepo,
			r.deps.AttendanceRepo,
			auditor,
			attendance.WithReconcilerLogger(r.logger),
		)

		recognitionService := service.NewRecognitionService(
			r.deps.RosterRepo,
			reconciler,
			r.deps.RecognitionRepo,
			auditor,
			service.WithThreshold(r.deps.MatchThreshold),
			service.WithNotifier(r.wsHub),
			service.WithLogger(r.logger),
		)

		attendanceService := service.NewAttendanceService(reconciler, r.deps.AttendanceRepo, r.wsHub)

		recognitionHandler := handler.NewRecognitionHandler(recognitionService, r.deps.RecognitionRepo, r.logger)
		attendanceHandler := handler.NewAttendanceHandler(attendanceService, r.logger)
		descriptorHandler := handler.NewDescriptorHandler(recognitionService, r.logger)

		v1.Post("/recognitions", recognitionHandler.Recognize)
		v1.Get("/lessons/:lessonId/recognitions", recognitionHandler.ListEvents)
		v1.Post("/lessons/:lessonId/attendance", attendanceHandler.Mark)
		v1.Get("/lessons/:lessonId/attendance", attendanceHandler.List)
		v1.Post("/students/:studentId/descriptor", descriptorHandler.Register)

		// WebSocket endpoint for live lesson feedback
		v1.Get("/ws/lessons/:lessonId", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))
	}

	// Health check endpoints
	var healthHandler *handler.HealthHandler
	if r.deps != nil {
		healthHandler = handler.NewHealthHandler(r.deps.DB, r.deps.Provider)
	} else {
		healthHandler = handler.NewHealthHandler(nil, nil)
	}
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
