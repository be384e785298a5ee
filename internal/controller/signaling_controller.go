package controller

import (
	"github.com/gofiber/fiber/v2"

	"purity-vision-be/internal/dto"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/pkg/serverutils"
	"purity-vision-be/internal/service"
	"purity-vision-be/internal/track"
)

type ISignalingController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Offer(ctx *fiber.Ctx) error
	ICECandidate(ctx *fiber.Ctx) error
	SessionStatus(ctx *fiber.Ctx) error
	SetTask(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	CloseSession(ctx *fiber.Ctx) error
}

// signalingController fronts the peer-connection transport. The connector is
// optional: without one the offer/ice endpoints report the transport as
// unavailable while the session mirrors keep working, so clients can probe
// and fall back to the socket transports.
type signalingController struct {
	connector        track.Connector
	sessionService   service.ISessionService
	inferenceService service.IInferenceService
	logger           logger.ILogger
}

func NewSignalingController(connector track.Connector, sessionService service.ISessionService, inferenceService service.IInferenceService, log logger.ILogger) ISignalingController {
	return &signalingController{
		connector:        connector,
		sessionService:   sessionService,
		inferenceService: inferenceService,
		logger:           log,
	}
}

func (c *signalingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webrtc/v1")
	h.Get("status", c.Status)
	h.Post("offer", c.Offer)
	h.Post("ice", c.ICECandidate)
	h.Get("session/:id", c.SessionStatus)
	h.Post("session/:id/task", c.SetTask)
	h.Post("session/:id/reset", c.Reset)
	h.Delete("session/:id", c.CloseSession)
}

func (c *signalingController) available() error {
	if c.connector == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "peer connection transport unavailable")
	}
	return nil
}

func (c *signalingController) Status(ctx *fiber.Ctx) error {
	res := dto.SignalingStatusResponse{
		TransportAvailable: c.connector != nil,
		DetectionAvailable: c.inferenceService.Available(),
		Device:             c.inferenceService.Device(),
	}
	return ctx.JSON(serverutils.SuccessResponse("Signaling status", res))
}

func (c *signalingController) Offer(ctx *fiber.Ctx) error {
	if err := c.available(); err != nil {
		return err
	}

	var req dto.OfferRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sess := c.sessionService.Create(req.SessionID)
	answer, err := c.connector.Offer(ctx.Context(), sess.ID, dto.SDPOffer{SDP: req.SDP, Type: req.Type})
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Offer accepted", answer))
}

func (c *signalingController) ICECandidate(ctx *fiber.Ctx) error {
	if err := c.available(); err != nil {
		return err
	}

	var req dto.ICECandidate
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.connector.AddICECandidate(ctx.Context(), req); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse("Candidate added", nil))
}

func (c *signalingController) SessionStatus(ctx *fiber.Ctx) error {
	status, err := c.sessionService.Status(ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session status", status))
}

func (c *signalingController) SetTask(ctx *fiber.Ctx) error {
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

func (c *signalingController) Reset(ctx *fiber.Ctx) error {
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

// CloseSession tears the peer connection down (when a connector is present)
// and removes the session from the registry.
func (c *signalingController) CloseSession(ctx *fiber.Ctx) error {
	id := ctx.Params("id")
	if c.connector != nil {
		if err := c.connector.Close(ctx.Context(), id); err != nil {
			c.logger.Warn("Signaling", "Peer connection close failed", map[string]interface{}{
				"session_id": id,
				"error":      err.Error(),
			})
		}
	}
	if err := c.sessionService.Delete(id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session closed", nil))
}
