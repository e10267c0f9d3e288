package middleware

import (
	"context"
	"net/http"

	"github.com/kpane/banktally/internal/api/apierr"
	"github.com/kpane/banktally/internal/model"
)

// IdentityHeader carries the device's self-generated opaque identity.
// There is no authentication beyond it: possession of the identity string
// is possession of the participant record, by design.
const IdentityHeader = "X-Identity"

type contextKey string

const identityContextKey contextKey = "identity"

// Identity extracts the caller's identity from the request header and
// stores it in the request context. Requests without one are rejected.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(IdentityHeader)
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}
			ctx := context.WithValue(r.Context(), identityContextKey, model.Identity(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the identity from the context, if present
func GetIdentity(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(model.Identity)
	return id, ok
}

// MustGetIdentity returns the identity from the context, panicking if the
// middleware did not run. Only for handlers behind Identity().
func MustGetIdentity(ctx context.Context) model.Identity {
	id, ok := GetIdentity(ctx)
	if !ok {
		panic("identity middleware did not run")
	}
	return id
}
