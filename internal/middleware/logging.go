package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/evyataryagoni/ipcheck/internal/classifier"
	"github.com/evyataryagoni/ipcheck/internal/logger"
)

// LoggingMiddleware logs each request with the caller as the handlers see it:
// resolved client IP, connection type and the mobile/tor/vpn flags.
// remote_addr keeps the transport peer, which differs behind a proxy.
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			clientIP := classifier.ClientIP(r.Header, r.RemoteAddr)
			userAgent := classifier.UserAgent(r.Header)

			reqLog := log.
				WithRequestID(middleware.GetReqID(r.Context())).
				WithClient(clientIP, classifier.ConnectionType(r.Header))

			reqLog.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", userAgent).
				Bool("is_mobile", classifier.IsMobile(userAgent)).
				Bool("is_tor", classifier.IsTor(r.Header)).
				Bool("is_vpn", classifier.IsVPN(r.Header, clientIP)).
				Msg("Request started")

			next.ServeHTTP(ww, r)

			// Status 0 means the handler wrote nothing; net/http sends 200
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			logEvent := reqLog.Info()
			switch {
			case status >= 500:
				logEvent = reqLog.Error()
			case status >= 400:
				logEvent = reqLog.Warn()
			}

			logEvent.
				Str("method", r.Method).
				Str("route", routeLabel(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Msg("Request completed")
		})
	}
}
