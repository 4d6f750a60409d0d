package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/atvirokodosprendimai/assettrack/internal/domain"
	"github.com/atvirokodosprendimai/assettrack/internal/logging"
	"github.com/atvirokodosprendimai/assettrack/internal/validation"
	"github.com/goccy/go-json"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusFor maps an error kind onto its HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.ErrValidation, domain.ErrReferentialIntegrity, domain.ErrDuplicate:
		return http.StatusBadRequest
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := map[string]any{"success": false, "message": err.Error()}

	var reqErr *validation.RequestError
	if errors.As(err, &reqErr) {
		body["errors"] = reqErr.Fields
	}
	if status >= http.StatusInternalServerError {
		body["error"] = err.Error()
		body["message"] = "internal error"
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, body)
}

// decodeJSON reads the request body into dst. A malformed body is a validation error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return domain.Validation("request body exceeds %d bytes", maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return domain.Validation("request body is empty")
		}
		return domain.Validation("invalid payload: %v", err)
	}
	return nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func message(text string) map[string]any {
	return map[string]any{"success": true, "message": text}
}

func data(payload any) map[string]any {
	return map[string]any{"data": payload}
}
