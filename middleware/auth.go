package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ecommerce-backend/utils"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// ClaimsFromContext returns the verified claims attached by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// AuthMiddleware verifies the bearer token and attaches its claims to the
// request context. Missing, malformed, expired, and badly signed tokens are
// all rejected with the same 401.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeMessage(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := utils.ParseJWT(parts[1])
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles rejects an authenticated request whose role is not in the
// allowed set.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeMessage(w, http.StatusForbidden, "Forbidden")
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
