package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/middleware"
	"github.com/noah-isme/gema-course-api/internal/service"
	"github.com/noah-isme/gema-course-api/internal/utils"
)

// ProgressHandler exposes the student's completion ledger.
type ProgressHandler struct {
	ledger service.ProgressLedger
	logger zerolog.Logger
}

// NewProgressHandler constructs the progress handler.
func NewProgressHandler(ledger service.ProgressLedger, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		ledger: ledger,
		logger: logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register binds the progress routes.
func (h *ProgressHandler) Register(router fiber.Router) {
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}

	router.Post("/recalculate", middleware.WithAuth(h.recalculate, student))
	router.Get("/", middleware.WithAuth(h.list, student))
	router.Get("/:courseId", middleware.WithAuth(h.get, student))
}

func (h *ProgressHandler) recalculate(c *fiber.Ctx) error {
	var payload dto.RecalculateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.CourseID == 0 {
		return utils.Fail(c, fiber.StatusBadRequest, "validation failed", map[string]string{"course_id": "required"})
	}

	result, err := h.ledger.Recalculate(withRequestContext(c), userIDFromContext(c), payload.CourseID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "progress recalculated", result)
}

func (h *ProgressHandler) list(c *fiber.Ctx) error {
	overview, err := h.ledger.List(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.OK(c, overview.Courses, "progress retrieved", fiber.Map{
		"completed":   overview.Completed,
		"in_progress": overview.InProgress,
	})
}

func (h *ProgressHandler) get(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	progress, err := h.ledger.Get(withRequestContext(c), userIDFromContext(c), courseID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "progress retrieved", progress)
}
