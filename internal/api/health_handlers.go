package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Check results reported by /ready.
const (
	checkOK            = "ok"
	checkError         = "error"
	checkNotConfigured = "not_configured"
)

// readinessTimeout bounds all dependency checks for one /ready call.
const readinessTimeout = 5 * time.Second

// HealthChecker defines the interface for components that can be health checked.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandlers provides health and readiness check endpoints for Kubernetes liveness and readiness checks.
type HealthHandlers struct {
	// Both checkers are optional. A nil checker is reported as not configured
	// and does not fail readiness.
	redisChecker   HealthChecker
	catalogChecker HealthChecker

	metricsEnabled bool
}

// HealthHandlersConfig configures the health check handlers.
type HealthHandlersConfig struct {
	RedisChecker   HealthChecker
	CatalogChecker HealthChecker
	MetricsEnabled bool
}

// NewHealthHandlers creates a new health check handler.
func NewHealthHandlers(config HealthHandlersConfig) *HealthHandlers {
	return &HealthHandlers{
		redisChecker:   config.RedisChecker,
		catalogChecker: config.CatalogChecker,
		metricsEnabled: config.MetricsEnabled,
	}
}

// HealthResponse represents the JSON response for health checks.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Health handles GET /health (liveness).
// Returns 200 whenever the process can serve requests.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	WriteJSON(w, r.Context(), http.StatusOK, HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"runtime": checkOK},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready (readiness).
// Returns 503 when a configured dependency fails its check.
func (h *HealthHandlers) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := make(map[string]string, 3)
	healthy := true

	for name, checker := range map[string]HealthChecker{
		"redis":   h.redisChecker,
		"catalog": h.catalogChecker,
	} {
		result := runCheck(ctx, name, checker)
		checks[name] = result
		if result == checkError {
			healthy = false
		}
	}

	if h.metricsEnabled {
		checks["metrics"] = checkOK
	} else {
		checks["metrics"] = checkNotConfigured
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, r.Context(), statusCode, HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func runCheck(ctx context.Context, name string, checker HealthChecker) string {
	if checker == nil {
		return checkNotConfigured
	}
	if err := checker.HealthCheck(ctx); err != nil {
		slog.WarnContext(ctx, "dependency health check failed", "dependency", name, "error", err)
		return checkError
	}
	return checkOK
}
