package middleware

import (
	"encoding/json"
	"net/http"
)

// errorJSON writes the same {"error": message} body the REST handlers use,
// so callers see one error shape regardless of which layer rejected them.
func errorJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
