package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/onnwee/giftbooks/internal/catalog"
	"github.com/onnwee/giftbooks/internal/gift"
	"github.com/onnwee/giftbooks/internal/recommend"
	"github.com/onnwee/giftbooks/internal/validate"
)

// Request limits for the recommend endpoint.
const (
	MaxRecommendBodyBytes   = 64 << 10
	DefaultRecommendTimeout = 20 * time.Second
)

// Recommender produces recommendations for a recipient profile.
type Recommender interface {
	Recommend(ctx context.Context, profile gift.RecipientProfile) (*recommend.Result, error)
}

// RecommendRequest is the body of POST /api/recommend. Enum fields that are
// missing fall back to defaults; unknown values are accepted and simply add
// no keywords.
type RecommendRequest struct {
	AgeGroup     string `json:"ageGroup"`
	Relationship string `json:"relationship"`
	Budget       string `json:"budget"`
	Personality  string `json:"personality"`
	Interests    string `json:"interests"`
	Notes        string `json:"notes"`
}

// RecommendResponse is the success body of POST /api/recommend.
type RecommendResponse struct {
	OK              bool              `json:"ok"`
	Queries         []string          `json:"queries"`
	Recommendations []gift.RankedGift `json:"recommendations"`
}

// OptionsResponse is the body of GET /api/options.
type OptionsResponse struct {
	OK bool `json:"ok"`
	gift.Options
}

// RecommendHandlersConfig configures RecommendHandlers.
type RecommendHandlersConfig struct {
	// Timeout bounds one recommendation, catalog fetches included.
	// Zero uses DefaultRecommendTimeout.
	Timeout time.Duration
}

// RecommendHandlers serves the recommendation endpoints.
type RecommendHandlers struct {
	recommender Recommender
	timeout     time.Duration
}

// NewRecommendHandlers creates RecommendHandlers backed by recommender.
func NewRecommendHandlers(recommender Recommender, config RecommendHandlersConfig) *RecommendHandlers {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultRecommendTimeout
	}
	return &RecommendHandlers{
		recommender: recommender,
		timeout:     timeout,
	}
}

// Recommend handles POST /api/recommend.
func (h *RecommendHandlers) Recommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	profile, ok := h.decodeProfile(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	result, err := h.recommender.Recommend(ctx, profile)
	if err != nil {
		h.writeRecommendError(w, r, err)
		return
	}

	resp := RecommendResponse{
		OK:              true,
		Queries:         result.Queries,
		Recommendations: result.Recommendations,
	}
	if resp.Queries == nil {
		resp.Queries = []string{}
	}
	if resp.Recommendations == nil {
		resp.Recommendations = []gift.RankedGift{}
	}

	slog.DebugContext(r.Context(), "recommendations served",
		"queries", len(resp.Queries),
		"recommendations", len(resp.Recommendations),
	)
	WriteJSON(w, r.Context(), http.StatusOK, resp)
}

// decodeProfile reads and validates the request body. It writes the error
// response itself and reports false when the request is rejected.
func (h *RecommendHandlers) decodeProfile(w http.ResponseWriter, r *http.Request) (gift.RecipientProfile, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRecommendBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, r.Context(), http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "Request body too large")
			return gift.RecipientProfile{}, false
		}
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Failed to read request body")
		return gift.RecipientProfile{}, false
	}

	var req RecommendRequest
	if err := json.Unmarshal(body, &req); err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return gift.RecipientProfile{}, false
	}

	interests, err := validate.Interests(req.Interests)
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "interests: "+err.Error())
		return gift.RecipientProfile{}, false
	}
	notes, err := validate.Notes(req.Notes)
	if err != nil {
		WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, "notes: "+err.Error())
		return gift.RecipientProfile{}, false
	}

	return gift.RecipientProfile{
		AgeGroup:     gift.AgeGroup(req.AgeGroup),
		Relationship: gift.Relationship(req.Relationship),
		Budget:       gift.Budget(req.Budget),
		Personality:  gift.Personality(req.Personality),
		Interests:    interests,
		Notes:        notes,
	}, true
}

// writeRecommendError maps a recommendation failure onto the error envelope.
// A request abandoned by the client gets no response.
func (h *RecommendHandlers) writeRecommendError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(r.Context().Err(), context.Canceled) {
		slog.InfoContext(r.Context(), "client canceled recommendation request", "error", err)
		return
	}

	code, message := ErrCodeInternal, "Failed to build recommendations"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code, message = ErrCodeTimeout, "Recommendation timed out"
		slog.WarnContext(r.Context(), "recommendation timed out", "timeout", h.timeout, "error", err)
	case errors.Is(err, catalog.ErrCircuitOpen):
		code, message = ErrCodeServiceUnavailable, "Book catalog is temporarily unavailable"
		slog.WarnContext(r.Context(), "catalog circuit open", "error", err)
	case errors.Is(err, recommend.ErrCatalog):
		code, message = ErrCodeCatalogUnavailable, "Book catalog could not be reached"
		slog.ErrorContext(r.Context(), "catalog fetch failed", "error", err)
	default:
		slog.ErrorContext(r.Context(), "recommendation failed", "error", err)
	}
	WriteError(w, r.Context(), StatusCodeMapping(code), code, message)
}

// Options handles GET /api/options, listing the accepted value of each
// profile enum field.
func (h *RecommendHandlers) Options(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, r.Context(), http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	WriteJSON(w, r.Context(), http.StatusOK, OptionsResponse{OK: true, Options: gift.ProfileOptions()})
}
