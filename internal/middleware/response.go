package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

type errorCodeKey struct{}

// SetErrorCode returns a copy of ctx carrying the API error code of the
// response being written.
func SetErrorCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, errorCodeKey{}, code)
}

// GetErrorCode returns the code stored by SetErrorCode, or "".
func GetErrorCode(ctx context.Context) string {
	code, _ := ctx.Value(errorCodeKey{}).(string)
	return code
}

// errorCodeRecorder is implemented by the Logging writer.
type errorCodeRecorder interface {
	recordErrorCode(code string)
}

// UpdateResponseContext passes the error code in ctx to the Logging
// middleware wrapping w. Writers in between are walked through their Unwrap
// method; without a Logging writer in the chain this is a no-op.
func UpdateResponseContext(w http.ResponseWriter, ctx context.Context) {
	code := GetErrorCode(ctx)
	if code == "" {
		return
	}
	for w != nil {
		if rec, ok := w.(errorCodeRecorder); ok {
			rec.recordErrorCode(code)
			return
		}
		u, ok := w.(interface{ Unwrap() http.ResponseWriter })
		if !ok {
			return
		}
		w = u.Unwrap()
	}
}

// errorBody mirrors the API error envelope for responses written before a
// request reaches a handler.
type errorBody struct {
	OK    bool `json:"ok"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeJSONError writes the standard error envelope and records code for the
// logging middleware.
func writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	UpdateResponseContext(w, SetErrorCode(r.Context(), code))

	var body errorBody
	body.Error.Code = code
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}
