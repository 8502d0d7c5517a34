package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/detailshop-backend/api/responses"
	pkgAuth "github.com/angelmondragon/detailshop-backend/pkg/auth"
	"github.com/angelmondragon/detailshop-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
)

type sessionValidator interface {
	Validate(ctx context.Context, sessionID, subject string) (bool, error)
}

// LoadPrincipal resolves the optional session carried by the cookie or bearer
// header. Requests without a valid live session continue anonymously; the
// Require* guards decide whether that is acceptable.
func LoadPrincipal(cfg config.JWTConfig, sessions sessionValidator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r, cfg.CookieName)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseSessionToken(cfg, token)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "auth.token_rejected")
				}
				next.ServeHTTP(w, r)
				return
			}
			principal := claims.Principal()
			if principal.SessionID == "" {
				next.ServeHTTP(w, r)
				return
			}

			if sessions != nil {
				ok, err := sessions.Validate(r.Context(), principal.SessionID, principal.Subject())
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := WithPrincipal(r.Context(), principal)
			if logg != nil {
				ctx = logg.WithPrincipal(ctx, string(principal.Kind), principal.ID.String(), string(principal.Role))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionToken extracts the raw token, preferring the Authorization header.
func SessionToken(r *http.Request, cookieName string) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw != "" {
		if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
			raw = strings.TrimSpace(raw[7:])
		}
		return raw
	}
	if cookieName == "" {
		return ""
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}
