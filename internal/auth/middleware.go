package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"go.uber.org/zap"
)

// APIKeyHeader carries the service credential
const APIKeyHeader = "x-api-key"

var (
	errMissingCredentials = errors.New("missing credentials")
	errMalformedHeader    = errors.New("authorization header must be 'Bearer <token>'")
	errInvalidAPIKey      = errors.New("invalid API key")
)

// Middleware authenticates requests with an API key or a bearer token
type Middleware struct {
	tokens *JWTValidator
	apiKey []byte
	logger *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: NewJWTValidator(&cfg.Auth),
		apiKey: []byte(cfg.ApiKey.Value),
		logger: logger,
	}
}

// Authenticate resolves the principal and stores it on the request context. API keys map to
// the system user; bearer tokens to the user they were issued for.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.principal(r)
		if err != nil {
			m.logger.Warn("authentication failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="vdg-api"`)
			domain.WriteProblem(w, http.StatusUnauthorized, err.Error())
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("auth_type", user.AuthType),
			zap.String("user_id", user.UserID),
			zap.Strings("roles", user.RolesAsStrings()),
		)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), user)))
	})
}

func (m *Middleware) principal(r *http.Request) (*UserContext, error) {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		if len(m.apiKey) == 0 || subtle.ConstantTimeCompare([]byte(key), m.apiKey) != 1 {
			return nil, errInvalidAPIKey
		}
		return SystemUser(), nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errMissingCredentials
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, errMalformedHeader
	}
	return m.tokens.ValidateToken(token)
}

// RequireRole rejects principals holding none of roles with 403
func (m *Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			if !ok {
				domain.WriteProblem(w, http.StatusUnauthorized, errMissingCredentials.Error())
				return
			}
			if !user.HasAnyRole(roles...) {
				domain.WriteProblem(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
