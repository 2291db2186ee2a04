package middleware

import (
	"net/http"
	"strings"

	"github.com/pixelcrate/pixelcrate-server/internal/logger"
	"github.com/pixelcrate/pixelcrate-server/internal/model"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// Authenticate validates session tokens and injects the user ID into the
// request context.
type Authenticate struct {
	tokenManager model.TokenManager
	logger       *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(tokenManager model.TokenManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokenManager: tokenManager, logger: logger}
}

// Handler parses the session token from the cookie or Authorization header,
// validates it and passes the request on with the user ID in context.
func (m *Authenticate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			m.logger.Warn("authentication failed", "reason", "missing token", "path", r.URL.Path)
			writeAuthError(w)
			return
		}

		userID, err := m.tokenManager.Parse(tokenString)
		if err != nil {
			m.logger.Warn("authentication failed", "reason", "invalid token", "path", r.URL.Path)
			writeAuthError(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
	})
}

// extractToken reads the session token from the "token" cookie, falling
// back to "Authorization: Bearer <token>".
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// writeAuthError writes a 401 with the same body for all auth failures.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing session token"}}`))
}
