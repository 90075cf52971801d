package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	accessgate "github.com/quantrail/accessgate"
	"github.com/quantrail/accessgate/audit"
	"github.com/quantrail/accessgate/permission"
	"github.com/quantrail/accessgate/rate"
	"github.com/quantrail/accessgate/session"
)

type sessionContextKey struct{}

// SessionFromContext returns the session attached by [Authenticate], if any.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// Gate composes the full admission chain: rate limit, then authentication,
// then the capability check. Routes with no capability requirement should
// stack [RateLimit] and [Authenticate] directly instead.
func Gate(plane *accessgate.Plane, required permission.Capability) func(http.Handler) http.Handler {
	rl := RateLimit(plane)
	auth := Authenticate(plane)
	check := RequireCapability(plane, required)
	return func(next http.Handler) http.Handler {
		return rl(auth(check(next)))
	}
}

// RateLimit enforces the tier policy for the request path before anything
// else runs. Budget headers are written on every response, allowed or not;
// a denial answers 429 with the tier's rejection message and a Retry-After.
func RateLimit(plane *accessgate.Plane) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tier := rate.Classify(r.URL.Path)
			key := rate.Identify(r, plane.CookieName())

			decision, err := plane.Limiter().Check(key, tier)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, accessgate.ErrorKind(err))
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

			if !decision.Allowed {
				plane.Metrics().Inc(accessgate.MetricRateLimitHit)
				plane.EmitDenial(r.Context(), audit.Event{
					EventType: "rate_limited",
					IP:        r.RemoteAddr,
					Path:      r.URL.Path,
					Tier:      string(tier),
				})

				retryAfter := int(decision.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))

				writeJSON(w, http.StatusTooManyRequests, map[string]any{
					"error":       decision.Message,
					"retry_after": retryAfter,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate validates the access credential from the Authorization header
// or the configured cookie and attaches the live session to the request
// context. Failures answer 401 with a machine-readable error kind.
func Authenticate(plane *accessgate.Plane) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r, plane.CookieName())
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, accessgate.ErrorKind(accessgate.ErrTokenMalformed))
				return
			}

			sess, err := plane.ValidateAccessToken(r.Context(), token)
			if err != nil {
				status := http.StatusUnauthorized
				if errors.Is(err, accessgate.ErrStoreUnavailable) {
					status = http.StatusServiceUnavailable
				}
				writeJSONError(w, status, accessgate.ErrorKind(err))
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCapability rejects authenticated requests whose session lacks the
// capability. Must run after [Authenticate].
func RequireCapability(plane *accessgate.Plane, required permission.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, accessgate.ErrorKind(accessgate.ErrSessionNotFound))
				return
			}

			if !plane.HasPermission(sess, required) {
				plane.Metrics().Inc(accessgate.MetricPermissionDenied)
				plane.EmitDenial(r.Context(), audit.Event{
					EventType: "permission_denied",
					UserID:    sess.UserID,
					SessionID: sess.SessionID,
					IP:        r.RemoteAddr,
					Path:      r.URL.Path,
				})
				writeJSONError(w, http.StatusForbidden, accessgate.ErrorKind(accessgate.ErrPermissionDenied))
				return
			}

			plane.Metrics().Inc(accessgate.MetricGateAdmitted)
			next.ServeHTTP(w, r)
		})
	}
}

func requestToken(r *http.Request, cookieName string) string {
	const bearer = "Bearer "
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, bearer) {
		return auth[len(bearer):]
	}
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, kind string) {
	writeJSON(w, status, map[string]any{"error": kind})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
