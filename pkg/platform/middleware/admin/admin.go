// Package admin guards the internal registry and results surface.
package admin

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"ballotbox/pkg/requestcontext"
)

type actorKey struct{}

// ActorID returns the authenticated admin identity, if any.
func ActorID(ctx context.Context) string {
	actorID, _ := ctx.Value(actorKey{}).(string)
	return actorID
}

// TokenValidator validates admin bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is the slice of token claims the middleware needs.
type Claims struct {
	ActorID string
}

// RequireAdmin admits requests carrying either a valid admin bearer token or
// the static operations token in X-Admin-Token. The static comparison is
// constant time.
func RequireAdmin(validator TokenValidator, staticToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if header := r.Header.Get("Authorization"); validator != nil {
				if token, ok := strings.CutPrefix(header, "Bearer "); ok {
					claims, err := validator.ValidateToken(token)
					if err != nil {
						logger.WarnContext(ctx, "admin token rejected",
							"request_id", requestcontext.RequestID(ctx), "error", err)
						writeUnauthorized(w)
						return
					}
					ctx = context.WithValue(ctx, actorKey{}, claims.ActorID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			staticHeader := r.Header.Get("X-Admin-Token")
			if staticToken != "" && subtle.ConstantTimeCompare([]byte(staticHeader), []byte(staticToken)) == 1 {
				ctx = context.WithValue(ctx, actorKey{}, "ops-token")
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			logger.WarnContext(ctx, "admin auth missing",
				"request_id", requestcontext.RequestID(ctx))
			writeUnauthorized(w)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin credentials required"}`))
}
