package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const VisitorKey contextKey = "visitor"

// VisitorCookie carries the anonymous visitor id. Toasts are queued per visitor.
const VisitorCookie = "neuromediai_visitor"

const visitorMaxAge = 30 * 24 * time.Hour

// VisitorMiddleware gives every browser an anonymous id. There is no login,
// the id only scopes notifications and rate limits.
func VisitorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitor := ""
		if c, err := r.Cookie(VisitorCookie); err == nil {
			if _, perr := uuid.Parse(c.Value); perr == nil {
				visitor = c.Value
			}
		}
		if visitor == "" {
			visitor = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    visitor,
				Path:     "/",
				MaxAge:   int(visitorMaxAge.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), VisitorKey, visitor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetVisitorFromContext extracts visitor id from context
func GetVisitorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(VisitorKey).(string); ok {
		return v
	}
	return ""
}
