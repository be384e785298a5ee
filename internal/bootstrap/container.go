package bootstrap

import (
	"purity-vision-be/internal/camera"
	"purity-vision-be/internal/config"
	"purity-vision-be/internal/controller"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/repository/memory"
	"purity-vision-be/internal/service"
	"purity-vision-be/internal/track"
	"purity-vision-be/pkg/detector"
)

type Container struct {
	// Controllers
	SessionController   controller.ISessionController
	StreamController    controller.IStreamController
	SignalingController controller.ISignalingController

	// Exposed for main.go
	CameraManager    *camera.Manager
	InferenceService service.IInferenceService
	Logger           logger.ILogger
}

// NewContainer wires the full dependency graph. The connector is the
// optional peer-connection backend; nil disables the signaling transport.
func NewContainer(cfg *config.Config, connector track.Connector) *Container {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	models := loadModels(cfg, sysLogger)

	sessionRepo := memory.NewSessionRepository(cfg.Session.IdleTTL)
	sessionService := service.NewSessionService(sessionRepo, cfg.Detection, sysLogger)
	inferenceService := service.NewInferenceService(models, cfg.Detection, sysLogger)

	cameraManager := camera.NewManager(cfg.Camera, sessionService, inferenceService, sysLogger, nil)

	return &Container{
		SessionController:   controller.NewSessionController(sessionService, inferenceService, cfg.Camera.JPEGQuality, sysLogger),
		StreamController:    controller.NewStreamController(sessionService, inferenceService, cameraManager, cfg.Camera.JPEGQuality, sysLogger),
		SignalingController: controller.NewSignalingController(connector, sessionService, inferenceService, sysLogger),
		CameraManager:       cameraManager,
		InferenceService:    inferenceService,
		Logger:              sysLogger,
	}
}

// loadModels opens the three stage detectors. A model that fails to load is
// logged and left nil so the server still serves streams, reporting the
// detection capability as unavailable.
func loadModels(cfg *config.Config, log logger.ILogger) *detector.Models {
	models := &detector.Models{DeviceName: cfg.Model.Device}

	open := func(name, path string, classes []string) detector.ObjectDetector {
		d, err := detector.OpenYOLO(path, cfg.Model.Device, cfg.Model.InputSize, classes)
		if err != nil {
			log.Warn("Bootstrap", "Model not loaded", map[string]interface{}{
				"model": name,
				"path":  path,
				"error": err.Error(),
			})
			return nil
		}
		log.Info("Bootstrap", "Model loaded", map[string]interface{}{"model": name, "path": path})
		return d
	}

	models.Gold = open("gold", cfg.Model.GoldModelPath, detector.DefaultGoldClasses)
	models.Stone = open("stone", cfg.Model.StoneModelPath, detector.DefaultStoneClasses)
	models.Acid = open("acid", cfg.Model.AcidModelPath, detector.DefaultAcidClasses)

	if !models.Available() {
		models.DeviceName = ""
	}
	return models
}
