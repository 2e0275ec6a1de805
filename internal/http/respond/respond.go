// Package respond renders JSON responses for the admin API.
package respond

import (
	"encoding/json"
	"net/http"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error writes {"message": msg} and, outside production, the underlying error text.
func Error(w http.ResponseWriter, status int, msg string, err error, exposeDetail bool) {
	body := map[string]string{"message": msg}
	if exposeDetail && err != nil {
		body["error"] = err.Error()
	}
	JSON(w, status, body)
}

// Internal writes the generic 500 body.
func Internal(w http.ResponseWriter, err error, exposeDetail bool) {
	Error(w, http.StatusInternalServerError, "Internal server error", err, exposeDetail)
}
