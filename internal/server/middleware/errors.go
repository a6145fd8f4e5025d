package middleware

import (
	"net/http"
)

// writeError writes a {"error": msg} body. Messages are fixed strings that
// need no escaping.
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
