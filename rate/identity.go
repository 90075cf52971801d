package rate

import (
	"net"
	"net/http"
	"strings"

	"github.com/quantrail/accessgate/jwt"
)

// Identify derives the admission key for a request. An authenticated
// principal id is preferred so one user cannot dodge limits by rotating
// addresses; the token is only peeked, not verified, so even a forged token
// yields a stable key instead of failing open. Callers without a usable
// credential are keyed by network address.
func Identify(r *http.Request, cookieName string) string {
	if token := requestToken(r, cookieName); token != "" {
		if uid, ok := jwt.PeekSubject(token); ok {
			return "user:" + uid
		}
	}
	return "ip:" + clientAddr(r)
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

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
