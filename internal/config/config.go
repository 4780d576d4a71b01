package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Shared
	LogDirectory string
	ModelPath    string
	ConfigPath   string

	// Server
	Port           int
	DBPath         string
	FrameDirectory string // annotated frames that produced a record
	KeepFrames     bool
	PhotoDirectory string // employee reference photos
	OfficeStart    string // "HH:MM" local time
	OnTimeLimit    string
	LastCheckIn    string
	OfficeEnd      string

	// Agent
	AgentPort        int
	ServerURL        string
	EmployeeID       string
	CameraID         int
	DetectInterval   time.Duration
	PollInterval     time.Duration
	SubmitCooldown   time.Duration
	LocationURL      string
	LocationTimeout  time.Duration
	AllowedLatitude  float64
	AllowedLongitude float64
	AllowedRadiusKm  float64
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
		ModelPath:    getEnv("MODEL_PATH", filepath.Join(".", "models", "res10_300x300_ssd_iter_140000.caffemodel")),
		ConfigPath:   getEnv("CONFIG_PATH", filepath.Join(".", "models", "deploy.prototxt")),

		Port:           getEnvAsInt("PORT", 8000),
		DBPath:         getEnv("DB_PATH", filepath.Join(".", "attendance.db")),
		FrameDirectory: getEnv("FRAME_DIR", filepath.Join(".", "frames")),
		KeepFrames:     getEnvAsBool("KEEP_FRAMES", true),
		PhotoDirectory: getEnv("PHOTO_DIR", filepath.Join(".", "dataset")),
		OfficeStart:    getEnv("OFFICE_START", "09:00"),
		OnTimeLimit:    getEnv("ON_TIME_LIMIT", "09:15"),
		LastCheckIn:    getEnv("LAST_CHECK_IN", "09:30"),
		OfficeEnd:      getEnv("OFFICE_END", "17:00"),

		AgentPort:        getEnvAsInt("AGENT_PORT", 8081),
		ServerURL:        getEnv("SERVER_URL", "http://127.0.0.1:8000"),
		EmployeeID:       getEnv("EMPLOYEE_ID", ""),
		CameraID:         getEnvAsInt("CAMERA_ID", 0),
		DetectInterval:   getEnvAsDuration("DETECT_INTERVAL", 2*time.Second),
		PollInterval:     getEnvAsDuration("POLL_INTERVAL", 5*time.Second),
		SubmitCooldown:   getEnvAsDuration("SUBMIT_COOLDOWN", 30*time.Second),
		LocationURL:      getEnv("LOCATION_URL", "http://127.0.0.1:8089/position"),
		LocationTimeout:  getEnvAsDuration("LOCATION_TIMEOUT", 10*time.Second),
		AllowedLatitude:  getEnvAsFloat("ALLOWED_LATITUDE", 22.2887936),
		AllowedLongitude: getEnvAsFloat("ALLOWED_LONGITUDE", 70.7854336),
		AllowedRadiusKm:  getEnvAsFloat("ALLOWED_RADIUS_KM", 0.1),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
