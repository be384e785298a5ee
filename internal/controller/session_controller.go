package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"purity-vision-be/internal/dto"
	"purity-vision-be/internal/pkg/frameio"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/pkg/serverutils"
	"purity-vision-be/internal/service"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	SetTask(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	ServiceStatus(ctx *fiber.Ctx) error
	ProcessFrame(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessionService   service.ISessionService
	inferenceService service.IInferenceService
	quality          int
	logger           logger.ILogger
}

func NewSessionController(sessionService service.ISessionService, inferenceService service.IInferenceService, quality int, log logger.ILogger) ISessionController {
	return &sessionController{
		sessionService:   sessionService,
		inferenceService: inferenceService,
		quality:          quality,
		logger:           log,
	}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/purity/v1")
	h.Get("status", c.ServiceStatus)
	h.Post("session/create", c.Create)
	h.Get("session/:id", c.Show)
	h.Post("session/:id/reset", c.Reset)
	h.Post("session/:id/task", c.SetTask)
	h.Delete("session/:id", c.Delete)
	h.Post("process", c.ProcessFrame)
}

func (c *sessionController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return err
		}
		if err := serverutils.ValidateRequest(req); err != nil {
			return err
		}
	}

	sess := c.sessionService.Create(req.SessionID)
	res := dto.CreateSessionResponse{SessionID: sess.ID, Status: sess.Status()}
	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *sessionController) Show(ctx *fiber.Ctx) error {
	status, err := c.sessionService.Status(ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session status", status))
}

func (c *sessionController) Reset(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if err := c.sessionService.Reset(id); err != nil {
		return err
	}
	status, err := c.sessionService.Status(id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session reset", status))
}

func (c *sessionController) SetTask(ctx *fiber.Ctx) error {
	var req dto.SetTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	id := ctx.Params("id")
	if err := c.sessionService.SetStage(id, req.Task); err != nil {
		return err
	}
	status, err := c.sessionService.Status(id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Task set to "+req.Task, status))
}

func (c *sessionController) Delete(ctx *fiber.Ctx) error {
	if err := c.sessionService.Delete(ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session deleted", nil))
}

func (c *sessionController) ServiceStatus(ctx *fiber.Ctx) error {
	res := dto.ServiceStatusResponse{
		DetectionAvailable: c.inferenceService.Available(),
		Device:             c.inferenceService.Device(),
	}
	return ctx.JSON(serverutils.SuccessResponse("Service status", res))
}

// ProcessFrame is the single-shot REST variant of the stream transports:
// one frame in, one annotated frame plus status out. The session is created
// on first use so stateless clients can start polling immediately.
func (c *sessionController) ProcessFrame(ctx *fiber.Ctx) error {
	var req dto.ProcessFrameRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	frame, err := frameio.DecodeDataURL(req.Frame)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sess := c.sessionService.Create(req.SessionID)
	outcome := service.RunFrame(context.Background(), sess, c.inferenceService, c.logger, frame)
	c.sessionService.Touch(sess)

	encoded, err := frameio.EncodeDataURL(outcome.Annotated, c.quality)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	res := dto.FrameMessage{
		Type:      "frame",
		Frame:     encoded,
		Status:    outcome.Status,
		ProcessMS: outcome.ProcessMS,
	}
	return ctx.JSON(serverutils.SuccessResponse("Frame processed", res))
}
