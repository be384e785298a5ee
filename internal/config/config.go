package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Detection DetectionConfig
	Model     ModelConfig
	Camera    CameraConfig
	Session   SessionConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

// DetectionConfig carries every tunable of the inspection workflow.
// Defaults match the reference model tuning; none of these are hidden
// constants in the pipeline.
type DetectionConfig struct {
	ConfThreshold        float64 // gold/stone detector confidence
	IoUThreshold         float64 // overlap suppression
	AcidConfThreshold    float64 // acid model invocation confidence
	AcidBoxConfThreshold float64 // per-box acceptance in acid stage
	RubbingThreshold     float64 // minimum total movement in the window
	RubbingConfirmFrames int     // hysteresis counter target
	HistorySize          int     // centroid ring capacity
	FluctuationThreshold float64 // meaningful distance delta (fluctuation variant)
	FluctuationCount     int     // sign changes required (fluctuation variant)
	FluctuationWindow    int     // distance window size (fluctuation variant)
	MotionVariant        string  // "centroid" or "fluctuation"
	PurityPolicy         string  // "first" or "highest"
}

type ModelConfig struct {
	GoldModelPath  string
	StoneModelPath string
	AcidModelPath  string
	Device         string // "auto", "cuda" or "cpu"
	InputSize      int
}

type CameraConfig struct {
	Enabled      bool
	Camera1Index int
	Camera2Index int
	FrameWidth   int
	FrameHeight  int
	JPEGQuality  int
}

type SessionConfig struct {
	IdleTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Detection: DetectionConfig{
			ConfThreshold:        getEnvAsFloat("DETECT_CONF_THRESHOLD", 0.5),
			IoUThreshold:         getEnvAsFloat("DETECT_IOU_THRESHOLD", 0.5),
			AcidConfThreshold:    getEnvAsFloat("ACID_CONF_THRESHOLD", 0.8),
			AcidBoxConfThreshold: getEnvAsFloat("ACID_BOX_CONF_THRESHOLD", 0.4),
			RubbingThreshold:     getEnvAsFloat("RUBBING_THRESHOLD", 15),
			RubbingConfirmFrames: getEnvAsInt("RUBBING_CONFIRM_FRAMES", 10),
			HistorySize:          getEnvAsInt("MOTION_HISTORY_SIZE", 30),
			FluctuationThreshold: getEnvAsFloat("FLUCTUATION_THRESHOLD", 2.0),
			FluctuationCount:     getEnvAsInt("FLUCTUATION_COUNT", 3),
			FluctuationWindow:    getEnvAsInt("FLUCTUATION_WINDOW", 10),
			MotionVariant:        getEnv("MOTION_VARIANT", "centroid"),
			PurityPolicy:         getEnv("PURITY_POLICY", "first"),
		},
		Model: ModelConfig{
			GoldModelPath:  getEnv("MODEL_GOLD_PATH", "ml_models/best_top2.onnx"),
			StoneModelPath: getEnv("MODEL_STONE_PATH", "ml_models/best_top_stone.onnx"),
			AcidModelPath:  getEnv("MODEL_ACID_PATH", "ml_models/best_aci_liq.onnx"),
			Device:         getEnv("DETECT_DEVICE", "auto"),
			InputSize:      getEnvAsInt("MODEL_INPUT_SIZE", 224),
		},
		Camera: CameraConfig{
			Enabled:      getEnv("CAMERA_MODE_ENABLED", "false") == "true",
			Camera1Index: getEnvAsInt("CAMERA1_INDEX", 0),
			Camera2Index: getEnvAsInt("CAMERA2_INDEX", 1),
			FrameWidth:   getEnvAsInt("CAMERA_FRAME_WIDTH", 640),
			FrameHeight:  getEnvAsInt("CAMERA_FRAME_HEIGHT", 480),
			JPEGQuality:  getEnvAsInt("CAMERA_JPEG_QUALITY", 80),
		},
		Session: SessionConfig{
			IdleTTL: time.Duration(getEnvAsInt("SESSION_IDLE_TTL_MINUTES", 60)) * time.Minute,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
