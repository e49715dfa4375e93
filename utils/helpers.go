package utils

import (
	"encoding/json"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
)

// GetUserID returns the user id EnsureValidToken authenticated, if any.
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(string)
	return userID, ok && userID != ""
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the uniform {"message": ...} error body.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"message": message})
}
