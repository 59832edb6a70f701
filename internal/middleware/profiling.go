package middleware

import (
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/goccy/go-json"
)

// profilingPrefix is where pprof handlers are mounted.
const profilingPrefix = "/debug/pprof"

// ProfilingConfig configures the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling endpoints are exposed.
	// Never enable profiling in production: it exposes runtime internals.
	Enabled bool

	// Environment is checked again so a production deploy can't expose pprof
	// even when Enabled is set.
	Environment string
}

// active reports whether profiling routes should be served.
func (c ProfilingConfig) active() bool {
	return c.Enabled && c.Environment != "production" && c.Environment != "prod"
}

// Profiling returns middleware that exposes pprof profiling endpoints at /debug/pprof/*.
// Requests outside that prefix pass through untouched.
//
// Example usage:
//
//	handler = middleware.Profiling(middleware.ProfilingConfig{
//	    Enabled:     cfg.ProfilingEnabled,
//	    Environment: cfg.Env,
//	})(handler)
func Profiling(config ProfilingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !config.Enabled {
			return next
		}

		if !config.active() {
			slog.Error("profiling cannot be enabled in production environment",
				"environment", config.Environment,
			)
			return next
		}

		slog.Warn("profiling endpoints enabled - development only",
			"environment", config.Environment,
			"endpoints", profilingPrefix+"/*",
		)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, profilingPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			switch r.URL.Path {
			case profilingPrefix + "/cmdline":
				pprof.Cmdline(w, r)
			case profilingPrefix + "/profile":
				pprof.Profile(w, r)
			case profilingPrefix + "/symbol":
				pprof.Symbol(w, r)
			case profilingPrefix + "/trace":
				pprof.Trace(w, r)
			default:
				// /debug/pprof/ and /debug/pprof/<profile-name>
				pprof.Index(w, r)
			}
		})
	}
}

// profilingStatus is the body served by ProfilingStatus.
type profilingStatus struct {
	Enabled     bool   `json:"profiling_enabled"`
	Environment string `json:"environment"`
	Endpoint    string `json:"endpoint,omitempty"`
}

// ProfilingStatus returns a handler that reports whether profiling is served.
func ProfilingStatus(config ProfilingConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := profilingStatus{
			Enabled:     config.active(),
			Environment: config.Environment,
		}
		if status.Enabled {
			status.Endpoint = profilingPrefix + "/"
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status); err != nil {
			slog.ErrorContext(r.Context(), "failed to write profiling status response", "error", err)
		}
	}
}
