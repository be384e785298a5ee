package main

import (
	"log"

	"github.com/fatih/color"

	"purity-vision-be/internal/bootstrap"
	"purity-vision-be/internal/config"
	"purity-vision-be/internal/server"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	// No peer-connection backend is bundled; the signaling endpoints report
	// the transport as unavailable until one is injected here.
	container := bootstrap.NewContainer(cfg, nil)
	defer container.Logger.Sync()

	// 3. Start Camera Push Mode
	if cfg.Camera.Enabled {
		for _, device := range []int{cfg.Camera.Camera1Index, cfg.Camera.Camera2Index} {
			if err := container.CameraManager.Start(device); err != nil {
				log.Printf("Camera %d not started: %v", device, err)
			}
		}
		defer container.CameraManager.StopAll()
	}

	color.Cyan("Gold Purity Inspection API")
	if container.InferenceService.Available() {
		color.Green("Detection: available (%s)", container.InferenceService.Device())
	} else {
		color.Yellow("Detection: unavailable, streams run without annotations")
	}

	// 4. Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
