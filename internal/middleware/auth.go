package middleware

import (
	"net/http"
	"strings"

	"github.com/dukerupert/fittrack/internal/auth"
)

// UserHeader carries the caller-supplied user id.
const UserHeader = "X-User-ID"

// RequireUser reads the user id from UserHeader into the request context.
// When the header is missing, fallback is used if set; otherwise the request
// is rejected with 401.
func RequireUser(fallback string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.Identity{UserID: strings.TrimSpace(r.Header.Get(UserHeader))}
			if id.UserID == "" {
				if fallback == "" {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					w.Write([]byte(`{"error":"missing ` + UserHeader + ` header"}`))
					return
				}
				id = auth.Identity{UserID: fallback, Fallback: true}
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}
