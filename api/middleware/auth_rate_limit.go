package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/detailshop-backend/api/responses"
	"github.com/angelmondragon/detailshop-backend/api/validators"
	pkgerrors "github.com/angelmondragon/detailshop-backend/pkg/errors"
	"github.com/angelmondragon/detailshop-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/detailshop-backend/pkg/redis"
)

// AuthRateLimitPolicy throttles credential endpoints by client address and by
// the submitted login identifier within a fixed window.
type AuthRateLimitPolicy struct {
	name          string
	window        time.Duration
	ipLimit       int
	identityLimit int
}

// NewAuthRateLimitPolicy builds a policy. A zero limit disables that dimension.
func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, identityLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:          name,
		window:        window,
		ipLimit:       ipLimit,
		identityLimit: identityLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.identityLimit > 0)
}

// attempt is one counter checked for a request.
type attempt struct {
	dimension string
	subject   string
	limit     int
}

// AuthRateLimit counts attempts per client IP and per hashed email or
// username. Counting happens before the handler runs, so failed and
// successful logins consume the same budget.
func AuthRateLimit(policy AuthRateLimitPolicy, store pkgredis.RateLimitStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			attempts := make([]attempt, 0, 2)
			if policy.ipLimit > 0 {
				if ip := clientIP(r); ip != "" {
					attempts = append(attempts, attempt{dimension: "ip", subject: ip, limit: policy.ipLimit})
				}
			}
			if policy.identityLimit > 0 && r.Body != nil {
				body, err := io.ReadAll(io.LimitReader(r.Body, validators.MaxBodyBytes+1))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				if identity := normalizeIdentity(extractIdentity(body)); identity != "" {
					attempts = append(attempts, attempt{dimension: "identity", subject: hashValue(identity), limit: policy.identityLimit})
				}
			}

			for _, a := range attempts {
				key := store.RateLimitKey(policy.name, a.dimension, a.subject)
				count, err := store.IncrWithTTL(ctx, key, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(a.limit) {
					respondRateLimited(ctx, logg, w, policy, a, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func respondRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, a attempt, count int64) {
	if logg != nil {
		fields := map[string]any{
			"policy":         policy.name,
			"dimension":      a.dimension,
			"attempts":       count,
			"limit":          a.limit,
			"window_seconds": int(policy.window.Seconds()),
		}
		// addresses are logged as-is; identities only ever as their hash
		if a.dimension == "ip" {
			fields["ip"] = a.subject
		} else {
			fields["identity_hash"] = a.subject
		}
		logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Round(time.Second).Seconds())))
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP prefers the first X-Forwarded-For hop since the API runs behind the
// platform router.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// extractIdentity reads the login identifier: customers sign in by email and
// back-office users by username.
func extractIdentity(payload []byte) string {
	var body struct {
		Email    string `json:"email"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	if body.Email != "" {
		return body.Email
	}
	return body.Username
}

func normalizeIdentity(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
