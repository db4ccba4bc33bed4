package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/secureauth-io/secureauth"
)

type accessInfoContextKey struct{}

// AccessFromContext returns the verified token subject injected by a guard.
func AccessFromContext(ctx context.Context) (secureauth.AccessInfo, bool) {
	info, ok := ctx.Value(accessInfoContextKey{}).(secureauth.AccessInfo)
	return info, ok
}

// RequireAccess guards a handler with stateless access-token verification.
// A revoked session's token still passes until it expires on its own; use
// [RequireLiveSession] where that window is unacceptable.
func RequireAccess(engine *secureauth.Engine) func(http.Handler) http.Handler {
	return guard(func(_ *http.Request, token string) (secureauth.AccessInfo, error) {
		return engine.ValidateAccess(token)
	})
}

// RequireLiveSession guards a handler with token verification plus a session
// store read, so revocation takes effect immediately.
func RequireLiveSession(engine *secureauth.Engine) func(http.Handler) http.Handler {
	return guard(func(r *http.Request, token string) (secureauth.AccessInfo, error) {
		return engine.ValidateAccessStrict(r.Context(), token)
	})
}

func guard(validate func(*http.Request, string) (secureauth.AccessInfo, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			info, err := validate(r, token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), accessInfoContextKey{}, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
