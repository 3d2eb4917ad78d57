package log

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Requests wraps an HTTP handler with request-ID generation and
// start/completion logging. Responses with 4xx status log at warn and
// 5xx at error.
func Requests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := newRequestID()
		clientIP := clientAddr(r)

		slog.InfoContext(r.Context(), "Request started",
			FieldRequestID, requestID,
			FieldMethod, r.Method,
			FieldPath, r.URL.Path,
			FieldClientIP, clientIP,
			FieldUserAgent, r.Header.Get("User-Agent"))

		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		level := slog.LevelInfo
		switch {
		case rw.status >= 500:
			level = slog.LevelError
		case rw.status >= 400:
			level = slog.LevelWarn
		}
		slog.Default().Log(r.Context(), level, "Request completed",
			FieldRequestID, requestID,
			FieldMethod, r.Method,
			FieldPath, r.URL.Path,
			FieldStatusCode, rw.status,
			FieldDuration, time.Since(start).Milliseconds(),
			FieldClientIP, clientIP)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func newRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(buf)
}
