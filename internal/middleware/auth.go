package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/plate-notify/internal/auth"
	"github.com/plate-notify/internal/model"
	"github.com/plate-notify/internal/obs"
	"github.com/sirupsen/logrus"
)

const bearerPrefix = "Bearer "

// TokenVerifier is satisfied by *auth.TokenIssuer.
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// AuthMiddleware guards protected routes with a bearer session token.
type AuthMiddleware struct {
	tokens  TokenVerifier
	metrics *obs.Metrics
	log     logrus.FieldLogger
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(tokens TokenVerifier, metrics *obs.Metrics, log logrus.FieldLogger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens:  tokens,
		metrics: metrics,
		log:     log,
	}
}

// Authenticate requires "Authorization: Bearer <token>". A raw token without
// the scheme is rejected. Every rejection is a 403.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r.Header.Get("Authorization"))
		if !ok {
			m.reject(w, r, "missing_token", "access denied")
			return
		}

		identity, err := m.tokens.Verify(token)
		if err != nil {
			m.reject(w, r, "invalid_token", "invalid token")
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), *identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, reason, message string) {
	if m.metrics != nil {
		m.metrics.AuthFailures.WithLabelValues(reason).Inc()
	}
	m.log.WithFields(logrus.Fields{
		"request_id": GetRequestID(r),
		"reason":     reason,
		"path":       r.URL.Path,
	}).Debug("request rejected by auth gate")
	writeMessage(w, http.StatusForbidden, message)
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.MessageResponse{Message: message})
}

// CORS middleware
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-Id")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
