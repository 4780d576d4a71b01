package app

import (
	"context"
	"fmt"
	"net/http"

	"faceattend/internal/capture"
	"faceattend/internal/config"
	"faceattend/internal/detect"
	"faceattend/internal/feed"
	"faceattend/internal/geo"
	"faceattend/internal/logger"
	"faceattend/internal/routes"
)

// Agent is the kiosk-side capture pipeline: geofence gate, camera sampling,
// attendance submission and the polled feed of today's records.
type Agent struct {
	config   *config.Config
	logger   *logger.Logger
	camera   *capture.Camera
	detector *detect.Detector
	session  *capture.Session
	poller   *feed.Poller
}

// NewAgent wires the capture pipeline. The detector model is loaded exactly
// once here; a load failure (or an unavailable camera) is fatal, since
// sampling could never start.
func NewAgent() (*Agent, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogDirectory)

	detector, err := detect.New(cfg.ModelPath, cfg.ConfigPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load face detector: %w", err)
	}

	camera, err := capture.OpenCamera(cfg.CameraID, log)
	if err != nil {
		detector.Close()
		return nil, err
	}

	fence := geo.Geofence{
		Center:   geo.Point{Latitude: cfg.AllowedLatitude, Longitude: cfg.AllowedLongitude},
		RadiusKm: cfg.AllowedRadiusKm,
	}
	locator := geo.NewHTTPLocator(cfg.LocationURL, cfg.LocationTimeout)
	submitter := capture.NewSubmitter(cfg.ServerURL, cfg.EmployeeID, cfg.SubmitCooldown, log)
	session := capture.NewSession(locator, fence, camera, detector, submitter, cfg.DetectInterval, log)
	poller := feed.NewPoller(cfg.ServerURL, cfg.PollInterval, log)

	return &Agent{
		config:   cfg,
		logger:   log,
		camera:   camera,
		detector: detector,
		session:  session,
		poller:   poller,
	}, nil
}

// Run opens the capture session, starts the feed poller, and serves the local
// status API. Blocks until the listener fails.
func (a *Agent) Run(ctx context.Context) error {
	a.session.Open(ctx)
	a.poller.Start()

	router := routes.Agent(a.session, a.poller, a.logger)

	a.logger.Info("Attendance agent listening on :%d", a.config.AgentPort)
	a.logger.Info("Backend: %s", a.config.ServerURL)
	a.logger.Info("Allowed location: %.7f, %.7f (radius %.3f km)",
		a.config.AllowedLatitude, a.config.AllowedLongitude, a.config.AllowedRadiusKm)

	return http.ListenAndServe(fmt.Sprintf(":%d", a.config.AgentPort), router)
}

// Close tears the pipeline down: both timers stop, then the camera and
// detector are released.
func (a *Agent) Close() {
	a.session.Close()
	a.poller.Stop()
	a.camera.Close()
	a.detector.Close()
}
