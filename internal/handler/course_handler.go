package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/middleware"
	"github.com/noah-isme/gema-course-api/internal/service"
	"github.com/noah-isme/gema-course-api/internal/utils"
)

// CourseHandler exposes course creation, lookup and enrollment.
type CourseHandler struct {
	courses service.CourseService
	ledger  service.ProgressLedger
	logger  zerolog.Logger
}

// NewCourseHandler constructs the course handler.
func NewCourseHandler(courses service.CourseService, ledger service.ProgressLedger, logger zerolog.Logger) *CourseHandler {
	return &CourseHandler{
		courses: courses,
		ledger:  ledger,
		logger:  logger.With().Str("component", "course_handler").Logger(),
	}
}

// Register binds the course routes.
func (h *CourseHandler) Register(router fiber.Router) {
	router.Post("/", middleware.WithAuth(h.create, middleware.AuthOptions{Role: middleware.AuthRoleManager}))
	router.Get("/:courseId", middleware.WithAuth(h.get, middleware.AuthOptions{Role: middleware.AuthRoleAny, RequireUser: true}))
	router.Post("/:courseId/enroll", middleware.WithAuth(h.enroll, middleware.AuthOptions{Role: middleware.AuthRoleStudent}))
}

func (h *CourseHandler) create(c *fiber.Ctx) error {
	var payload dto.CourseCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.courses.Create(withRequestContext(c), activityActorFromContext(c), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CourseHandler) get(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	course, err := h.courses.Get(withRequestContext(c), courseID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "course retrieved", course)
}

func (h *CourseHandler) enroll(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	progress, err := h.ledger.Enroll(withRequestContext(c), userIDFromContext(c), courseID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "enrolled", progress)
}
