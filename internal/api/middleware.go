package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"inventory/internal/auth"
	"inventory/internal/db"
	"inventory/internal/store"
)

type contextKey string

const (
	claimsKey contextKey = "claims"
	connKey   contextKey = "conn"
)

// UnitOfWork gives every request its own db.Conn and releases it once the
// handler returns.
func UnitOfWork(pool *sqlx.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := db.NewConn(pool)
			defer func() {
				if err := c.Release(); err != nil {
					slog.Error("releasing connection", "error", err)
				}
			}()

			ctx := context.WithValue(r.Context(), connKey, c)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// connFrom returns the request's unit-of-work connection.
func connFrom(r *http.Request) *db.Conn {
	c, _ := r.Context().Value(connKey).(*db.Conn)
	return c
}

// AuthMiddleware validates the session cookie, rejects revoked sessions and
// adds the claims to the context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookie)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			claims, err := auth.ValidateToken(secret, cookie.Value)
			if err != nil {
				jsonError(w, http.StatusUnauthorized, "invalid session")
				return
			}

			revoked, err := store.IsSessionRevoked(r.Context(), connFrom(r), claims.ID)
			if err != nil {
				storeError(w, r, err, "session")
				return
			}
			if revoked {
				jsonError(w, http.StatusUnauthorized, "session has been revoked")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims retrieves the session claims from the context.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// SecurityHeaders sets the headers every response carries.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		h.Set("Content-Security-Policy", "default-src 'self'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}
