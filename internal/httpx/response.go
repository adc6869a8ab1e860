package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform error envelope: a stable snake_case code in
// Error, optional human-readable details alongside.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes the payload with the given status code. The body is marshalled
// up front so an encoding failure never leaves a half-written response.
func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, werr := w.Write(body); werr != nil {
		_ = werr
	}
}

// JSONError writes the standard error envelope.
func JSONError(w http.ResponseWriter, status int, code string, details any) {
	JSON(w, status, ErrorResponse{Error: code, Details: details})
}
