package http

import (
	"encoding/json"
	"net/http"

	applog "planboard/internal/log"
)

// writeJSON encodes v with the given status. Encoding failures are logged;
// the status line has already been written at that point.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode response",
			applog.FieldPath, r.URL.Path, applog.FieldError, err)
	}
}
