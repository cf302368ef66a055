package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	redisclient "perception/internal/adapters/redis"
	"perception/internal/domain/leaderboard"
	"perception/pkg/errors"
	"perception/pkg/logger"
)

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	redis       *redisclient.Client // nil when snapshots live in memory
	store       leaderboard.SnapshotStore
	staleAfter  time.Duration
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a new health check handler. redis may be nil; staleAfter bounds
// how old a snapshot can get before the service reports degraded.
func New(
	log *logger.Logger,
	redis *redisclient.Client,
	store leaderboard.SnapshotStore,
	staleAfter time.Duration,
	serviceName string,
	version string,
) *Handler {
	return &Handler{
		log:         log,
		redis:       redis,
		store:       store,
		staleAfter:  staleAfter,
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// HandleLiveness returns 200 OK if service is running
// Used by Kubernetes liveness probe
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "alive",
	})
}

// HandleReadiness checks if service is ready to accept traffic
// Used by Kubernetes readiness probe
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth)
	allHealthy := true

	if h.redis != nil {
		redisHealth := h.checkRedis(ctx)
		checks["redis"] = redisHealth
		if redisHealth.Status != "healthy" {
			allHealthy = false
		}
	}

	// A missing snapshot means the first rebuild has not finished yet
	snapHealth := h.checkSnapshot(ctx)
	checks["snapshot"] = snapHealth
	if snapHealth.Status == "unhealthy" {
		allHealthy = false
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warn("Readiness check failed", "checks", checks)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// HandleHealth returns detailed health status (includes all checks)
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth)
	unhealthy := 0

	if h.redis != nil {
		redisHealth := h.checkRedis(ctx)
		checks["redis"] = redisHealth
		if redisHealth.Status != "healthy" {
			unhealthy++
		}
	}

	snapHealth := h.checkSnapshot(ctx)
	checks["snapshot"] = snapHealth
	if snapHealth.Status != "healthy" {
		unhealthy++
	}

	status := HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).String(),
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if unhealthy == len(checks) && len(checks) > 0 {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else if unhealthy > 0 {
		status.Status = "degraded" // Still return 200 for degraded
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(status)
}

// checkRedis verifies Redis connectivity
func (h *Handler) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	err := h.redis.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Error("Redis health check failed", "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

// checkSnapshot verifies a leaderboard snapshot exists and is fresh enough
func (h *Handler) checkSnapshot(ctx context.Context) ComponentHealth {
	start := time.Now()
	snapshot, err := h.store.Latest(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, errors.ErrNoSnapshot) {
			return ComponentHealth{
				Status:       "unhealthy",
				ResponseTime: elapsed.String(),
				Error:        "no snapshot built yet",
			}
		}
		h.log.Error("Snapshot health check failed", "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	if age := snapshot.Age(time.Now()); h.staleAfter > 0 && age > h.staleAfter {
		return ComponentHealth{
			Status:       "degraded",
			ResponseTime: elapsed.String(),
			Error:        "snapshot is " + age.Round(time.Second).String() + " old",
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}
