package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"gdpdash/internal/dataprocessing"
	ws "gdpdash/internal/websocket"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	cache     *dataprocessing.Cache
	hub       *ws.Hub
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// VersionInfo describes the running build
type VersionInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version string, cache *dataprocessing.Cache, hub *ws.Hub, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &HealthService{
		version:   version,
		cache:     cache,
		hub:       hub,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// GetHealth returns the aggregate health of the server and its dataset
func (s *HealthService) GetHealth(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		Runtime: map[string]interface{}{
			"uptime_seconds": time.Since(s.startTime).Seconds(),
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
		},
		Services: make(map[string]interface{}),
	}

	status.Services["dataset"] = s.datasetHealth(ctx)

	if s.hub != nil {
		status.Services["websocket"] = map[string]interface{}{
			"status":  "healthy",
			"clients": s.hub.ClientCount(),
		}
	}

	for _, svc := range status.Services {
		if health, ok := svc.(ServiceHealth); ok && health.Status != "healthy" {
			status.Status = "degraded"
		}
	}

	return status
}

func (s *HealthService) datasetHealth(ctx context.Context) interface{} {
	snapshot, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "dataset health check failed",
			slog.String("error", err.Error()))
		return ServiceHealth{Status: "unhealthy", Message: err.Error()}
	}

	return map[string]interface{}{
		"status":      "healthy",
		"fingerprint": snapshot.Fingerprint,
		"countries":   len(snapshot.Wide),
		"rows":        len(snapshot.Long),
		"loaded_at":   snapshot.LoadedAt.UTC(),
	}
}

// Version returns build information for the version endpoint
func (s *HealthService) Version() VersionInfo {
	return VersionInfo{
		Name:      "GDP Dashboard API",
		Version:   s.version,
		GoVersion: runtime.Version(),
	}
}

// Readiness reports whether the dataset can be served
func (s *HealthService) Readiness(ctx context.Context) error {
	_, err := s.cache.Get(ctx)
	return err
}
