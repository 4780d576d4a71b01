package app

import (
	"fmt"
	"net/http"

	"faceattend/internal/config"
	"faceattend/internal/detect"
	"faceattend/internal/logger"
	"faceattend/internal/repository/sqlite"
	"faceattend/internal/routes"
	"faceattend/internal/ws"
)

// Server is the attendance backend: frame ingest, record store, live feed.
type Server struct {
	config   *config.Config
	logger   *logger.Logger
	detector *detect.Detector
	db       *sqlite.DB
	hub      *ws.Hub
}

// NewServer wires the backend. A model load or database failure is fatal.
func NewServer() (*Server, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogDirectory)

	detector, err := detect.New(cfg.ModelPath, cfg.ConfigPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load face detector: %w", err)
	}

	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		detector.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Server{
		config:   cfg,
		logger:   log,
		detector: detector,
		db:       db,
		hub:      ws.NewHub(log),
	}, nil
}

// Run starts the hub and serves the API. Blocks until the listener fails.
func (s *Server) Run() error {
	go s.hub.Run()

	attendance := sqlite.NewAttendanceRepository(s.db)
	employees := sqlite.NewEmployeeRepository(s.db)
	router := routes.Server(s.detector, attendance, employees, s.hub, s.config, s.logger)

	s.logger.Info("Attendance server listening on :%d", s.config.Port)
	s.logger.Info("Database: %s", s.config.DBPath)
	s.logger.Info("Model: %s", s.config.ModelPath)

	return http.ListenAndServe(fmt.Sprintf(":%d", s.config.Port), router)
}

// Close releases the hub, detector and database.
func (s *Server) Close() {
	s.hub.Stop()
	s.detector.Close()
	s.db.Close()
}
