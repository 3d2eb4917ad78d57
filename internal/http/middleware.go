package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"genfin/internal/core"
)

// sessionCookie is the name of the login cookie.
const sessionCookie = "genfin_session"

type ctxKey int

const accountKey ctxKey = iota

// accountFrom returns the authenticated account stored by authed.
func accountFrom(r *http.Request) *core.Account {
	account, _ := r.Context().Value(accountKey).(*core.Account)
	return account
}

// withSecurity sets the security headers on every response and rate
// limits mutating requests per client IP.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy",
			"default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			ip := clientIP(r)
			if !s.limiter.Allow(ip) {
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", ip, "method", r.Method, "path", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// authed resolves the session cookie and puts the account on the request
// context, replying 401 when the session is missing or stale.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, err := s.sessionAccount(r)
		if err != nil {
			respondError(w, r, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), accountKey, account)))
	}
}

func (s *Server) sessionAccount(r *http.Request) (*core.Account, error) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, errNoSession
	}
	return s.auth.Authenticate(r.Context(), cookie.Value)
}

var trustedProxies = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, network)
	}
	return nets
}()

// clientIP resolves the address used for rate limiting. Forwarding
// headers are honored only when the direct peer is a trusted proxy.
func clientIP(r *http.Request) string {
	direct, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		direct = r.RemoteAddr
	}
	parsed := net.ParseIP(direct)
	if parsed == nil {
		return direct
	}

	trusted := false
	for _, network := range trustedProxies {
		if network.Contains(parsed) {
			trusted = true
			break
		}
	}
	if !trusted {
		return direct
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}
	return direct
}
