package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sellside/marketd/internal/domain"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity returns middleware that extracts the caller's identity from the
// X-User-ID and X-User-Role headers and attaches it to the request context.
// Identity is asserted by the upstream gateway after authentication; this
// service only interprets it. Requests without X-User-ID pass through
// anonymous and are rejected by handlers that need a caller.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
			if userID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ident := domain.Identity{
				UserID: userID,
				Role:   domain.RoleUser,
			}
			if strings.EqualFold(strings.TrimSpace(r.Header.Get("X-User-Role")), string(domain.RoleAdmin)) {
				ident.Role = domain.RoleAdmin
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the caller identity stored by the Identity
// middleware, if any.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(domain.Identity)
	return ident, ok
}
