package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/umbra-img/umbra/internal/platform/httpx"
)

type userContextKey struct{}

// ContextWithUser stores the authenticated identity in context.
func ContextWithUser(ctx context.Context, user PublicUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authenticated identity from context.
func UserFromContext(ctx context.Context) (PublicUser, bool) {
	user, ok := ctx.Value(userContextKey{}).(PublicUser)
	return user, ok
}

// BearerToken extracts the bearer token from the Authorization header, or
// returns the empty string when none is present.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// RequireAuth rejects requests without a valid session token. Invalid,
// expired and absent tokens are indistinguishable to the caller.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid authentication credentials")
			return
		}
		user, ok, err := h.manager.Verify(r.Context(), token)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid authentication credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}
