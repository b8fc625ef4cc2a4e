package middleware

import (
	"net/http"
	"strings"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	pkgAuth "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/auth"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/config"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
)

const (
	guestTokenHeader  = "X-Guest-Token"
	maxGuestTokenSize = 128
)

// Identity resolves the caller for storefront routes. A bearer token wins
// when present and must parse; otherwise the guest token header identifies an
// anonymous cart. Requests that carry neither are rejected.
func Identity(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := bearerToken(r); token != "" {
				claims, err := pkgAuth.ParseAccessToken(cfg, token)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
					return
				}
				ctx := withClaims(r.Context(), logg, claims)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			guest := strings.TrimSpace(r.Header.Get(guestTokenHeader))
			if guest == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if len(guest) > maxGuestTokenSize {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid guest token"))
				return
			}

			ctx := WithGuestToken(r.Context(), guest)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{"guest": true})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects callers that resolved as guests. Routes like cart merge
// and order history only make sense for a signed-in customer.
func RequireUser(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if UserIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
