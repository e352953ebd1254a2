package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Success writes a JSON success envelope.
func Success(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Success: true, Data: data})
}

// Fail writes err as a JSON error envelope. Internal causes are logged
// but never echoed to the caller.
func Fail(w http.ResponseWriter, logger *slog.Logger, err error) {
	apiErr := AsError(err)
	if apiErr.Status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "error", apiErr.Err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{Success: false, Error: apiErr.Message})
}

// DecodeJSON decodes the request body into v, rejecting unknown sizes
// over 1 MiB.
func DecodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return Validation("invalid JSON body")
	}
	return nil
}
