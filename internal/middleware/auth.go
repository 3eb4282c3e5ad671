package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"barhop-backend/internal/services"
)

type contextKey int

const ctxUserID contextKey = 0

const bearerPrefix = "Bearer "

// AuthMiddleware authenticates requests with a bearer JWT and puts the
// resolved user id on the request context.
func AuthMiddleware(userService *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "Authorization header required")
				return
			}

			raw, ok := strings.CutPrefix(header, bearerPrefix)
			if !ok || raw == "" || strings.ContainsRune(raw, ' ') {
				unauthorized(w, "Invalid authorization header format")
				return
			}

			userID, err := userService.ValidateJWT(raw)
			if err != nil {
				unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user id, or the empty string
// outside an authenticated request.
func GetUserID(ctx context.Context) string {
	id, _ := ctx.Value(ctxUserID).(string)
	return id
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ValidateWebSocketToken authenticates the token query parameter used
// by the WebSocket endpoint, where the client cannot set headers.
func ValidateWebSocketToken(token string, userService *services.UserService) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token required")
	}
	return userService.ValidateJWT(token)
}
