package handler

import (
	"errors"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/middleware"
	"github.com/noah-isme/gema-course-api/internal/service"
	"github.com/noah-isme/gema-course-api/internal/utils"
)

// TaskHandler exposes task authoring, submission and grading endpoints.
type TaskHandler struct {
	service service.TaskService
	logger  zerolog.Logger
}

// NewTaskHandler constructs the task handler.
func NewTaskHandler(service service.TaskService, logger zerolog.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger.With().Str("component", "task_handler").Logger(),
	}
}

// Register binds the task routes.
func (h *TaskHandler) Register(router fiber.Router) {
	manager := middleware.AuthOptions{Role: middleware.AuthRoleManager}
	student := middleware.AuthOptions{Role: middleware.AuthRoleStudent}

	router.Post("/", middleware.WithAuth(h.create, manager))
	router.Post("/submit", middleware.WithAuth(h.submit, student))
	router.Post("/grade", middleware.WithAuth(h.grade, manager))
	router.Get("/unviewed", middleware.WithAuth(h.unviewed, student))
	router.Get("/student/:courseId", middleware.WithAuth(h.listForStudent, student))
	router.Get("/course/:courseId", middleware.WithAuth(h.listForCourse, manager))
	router.Post("/:taskId/viewed", middleware.WithAuth(h.markViewed, student))
	router.Delete("/:taskId", middleware.WithAuth(h.delete, manager))
}

func (h *TaskHandler) create(c *fiber.Ctx) error {
	var payload dto.TaskCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var file *multipart.FileHeader
	if header, err := c.FormFile("file"); err == nil {
		file = header
	} else if !errors.Is(err, fasthttp.ErrMissingFile) && !errors.Is(err, fasthttp.ErrNoMultipartForm) {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid attachment")
	}

	task, err := h.service.Create(withRequestContext(c), activityActorFromContext(c), payload, file)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "task created", task)
}

func (h *TaskHandler) submit(c *fiber.Ctx) error {
	var payload dto.TaskSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.service.Submit(withRequestContext(c), userIDFromContext(c), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission received", submission)
}

func (h *TaskHandler) grade(c *fiber.Ctx) error {
	var payload dto.TaskGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Grade(withRequestContext(c), activityActorFromContext(c), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "submission graded", result)
}

func (h *TaskHandler) listForStudent(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	result, err := h.service.ListForStudent(withRequestContext(c), userIDFromContext(c), courseID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "tasks retrieved", result)
}

func (h *TaskHandler) listForCourse(c *fiber.Ctx) error {
	courseID, err := parseUintParam(c, "courseId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	result, err := h.service.ListForCourse(withRequestContext(c), activityActorFromContext(c), courseID)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "tasks retrieved", result)
}

func (h *TaskHandler) markViewed(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "taskId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	if err := h.service.MarkViewed(withRequestContext(c), userIDFromContext(c), taskID); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "verdict acknowledged", fiber.Map{"task_id": taskID})
}

func (h *TaskHandler) unviewed(c *fiber.Ctx) error {
	count, err := h.service.UnviewedCount(withRequestContext(c), userIDFromContext(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "unviewed verdicts", fiber.Map{"count": count})
}

func (h *TaskHandler) delete(c *fiber.Ctx) error {
	taskID, err := parseUintParam(c, "taskId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid task id")
	}

	if err := h.service.Delete(withRequestContext(c), activityActorFromContext(c), taskID); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return utils.SendSuccess(c, "task deleted", fiber.Map{"id": taskID})
}
