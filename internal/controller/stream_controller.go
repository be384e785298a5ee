package controller

import (
	"bufio"
	"fmt"

	"github.com/gofiber/fiber/v2"
	fws "github.com/gofiber/websocket/v2"

	"purity-vision-be/internal/camera"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/pkg/serverutils"
	"purity-vision-be/internal/service"
	"purity-vision-be/internal/websocket"
)

type IStreamController interface {
	RegisterRoutes(r fiber.Router)
	CameraList(ctx *fiber.Ctx) error
	CameraStart(ctx *fiber.Ctx) error
	CameraStop(ctx *fiber.Ctx) error
	CameraFeed(ctx *fiber.Ctx) error
}

type streamController struct {
	sessionService   service.ISessionService
	inferenceService service.IInferenceService
	manager          *camera.Manager
	quality          int
	logger           logger.ILogger
}

func NewStreamController(sessionService service.ISessionService, inferenceService service.IInferenceService, manager *camera.Manager, quality int, log logger.ILogger) IStreamController {
	return &streamController{
		sessionService:   sessionService,
		inferenceService: inferenceService,
		manager:          manager,
		quality:          quality,
		logger:           log,
	}
}

func (c *streamController) RegisterRoutes(r fiber.Router) {
	r.Use("/stream", func(ctx *fiber.Ctx) error {
		if fws.IsWebSocketUpgrade(ctx) {
			return ctx.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	r.Get("/stream/:session_id", fws.New(c.streamJSON))
	r.Get("/stream-binary/:session_id", fws.New(c.streamBinary))

	h := r.Group("/camera")
	h.Get("list", c.CameraList)
	h.Post("start/:device", c.CameraStart)
	h.Post("stop/:device", c.CameraStop)
	h.Get("feed/:device", c.CameraFeed)
}

func (c *streamController) deps(conn *fws.Conn) websocket.Deps {
	sess := c.sessionService.Create(conn.Params("session_id"))
	return websocket.Deps{
		Session:   sess,
		Sessions:  c.sessionService,
		Inference: c.inferenceService,
		Quality:   c.quality,
		Logger:    c.logger,
	}
}

func (c *streamController) streamJSON(conn *fws.Conn) {
	defer conn.Close()
	websocket.ServeJSON(conn, c.deps(conn))
}

func (c *streamController) streamBinary(conn *fws.Conn) {
	defer conn.Close()
	websocket.ServeBinary(conn, c.deps(conn))
}

func (c *streamController) CameraList(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Camera list", c.manager.List()))
}

func (c *streamController) CameraStart(ctx *fiber.Ctx) error {
	device, err := ctx.ParamsInt("device")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid device index")
	}
	if err := c.manager.Start(device); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(fmt.Sprintf("Camera %d started", device), nil))
}

func (c *streamController) CameraStop(ctx *fiber.Ctx) error {
	device, err := ctx.ParamsInt("device")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid device index")
	}
	if err := c.manager.Stop(device); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return ctx.JSON(serverutils.SuccessResponse(fmt.Sprintf("Camera %d stopped", device), nil))
}

// CameraFeed streams a running camera as multipart MJPEG. The viewer is
// detached from the hub when the client goes away.
func (c *streamController) CameraFeed(ctx *fiber.Ctx) error {
	device, err := ctx.ParamsInt("device")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid device index")
	}

	hub, ok := c.manager.Hub(device)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("camera %d is not running", device))
	}

	viewer := hub.Subscribe()
	ctx.Set(fiber.HeaderContentType, "multipart/x-mixed-replace; boundary=frame")
	ctx.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer hub.Unsubscribe(viewer)
		for frame := range viewer.Send {
			if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame)); err != nil {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			if _, err := w.WriteString("\r\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}
