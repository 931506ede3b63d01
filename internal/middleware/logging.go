// internal/middleware/logging.go
package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// LogMiddleware logs every HTTP request with its method, path, duration and
// remote address.
func LogMiddleware(logger *logrus.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path
			method := r.Method

			next.ServeHTTP(w, r)

			logger.WithFields(logrus.Fields{
				"method":   method,
				"path":     path,
				"duration": time.Since(start),
				"remote":   r.RemoteAddr,
			}).Info("HTTP Request")
		})
	}
}

// LogWebSocketConnect logs an accepted websocket upgrade.
func LogWebSocketConnect(logger *logrus.Logger, remoteAddr, sessionID string) {
	logger.WithFields(logrus.Fields{
		"remote":  remoteAddr,
		"session": sessionID,
	}).Info("WebSocket connected")
}

// LogWebSocketDisconnect logs a websocket teardown, with the read error that
// ended the connection if there was one.
func LogWebSocketDisconnect(logger *logrus.Logger, remoteAddr, sessionID string, err error) {
	fields := logrus.Fields{
		"remote":  remoteAddr,
		"session": sessionID,
	}
	if err != nil {
		fields["error"] = err
	}
	logger.WithFields(fields).Info("WebSocket disconnected")
}
