package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/auth"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/domain"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"
)

// RateLimiter applies per-IP limits before authentication and per-principal limits after it
type RateLimiter struct {
	enabled      bool
	logger       *zap.Logger
	anonymous    func(http.Handler) http.Handler
	principal    func(http.Handler) http.Handler
	exemptIPs    map[string]struct{}
	exemptPaths  map[string]struct{}
	exemptPrefix []string
}

// NewRateLimiter creates a rate limiter. Paths ending in "/*" exempt everything below them.
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled:     cfg.Enabled,
		logger:      logger,
		exemptIPs:   make(map[string]struct{}, len(cfg.WhitelistIPs)),
		exemptPaths: make(map[string]struct{}, len(cfg.WhitelistPaths)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.exemptIPs[ip] = struct{}{}
	}
	for _, path := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(path, "/*"); ok {
			rl.exemptPrefix = append(rl.exemptPrefix, prefix)
			continue
		}
		rl.exemptPaths[path] = struct{}{}
	}

	rl.anonymous = httprate.Limit(cfg.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rl.tooManyRequests),
	)
	rl.principal = httprate.Limit(cfg.RequestsPerMinuteAuth, time.Minute,
		httprate.WithKeyFuncs(principalKey),
		httprate.WithLimitHandler(rl.tooManyRequests),
	)

	if cfg.Enabled {
		logger.Info("Rate limiter initialized",
			zap.Int("requests_per_minute", cfg.RequestsPerMinute),
			zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
			zap.Strings("whitelist_paths", cfg.WhitelistPaths),
		)
	}
	return rl
}

// Limit keys authenticated requests by principal and the rest by client IP
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	byPrincipal := rl.principal(next)
	byIP := rl.anonymous(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case rl.exempt(r):
			next.ServeHTTP(w, r)
		case hasPrincipal(r):
			byPrincipal.ServeHTTP(w, r)
		default:
			byIP.ServeHTTP(w, r)
		}
	})
}

// LimitByIP limits by client IP only, for use before authentication
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	byIP := rl.anonymous(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		byIP.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	if _, ok := rl.exemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range rl.exemptPrefix {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	ip, err := httprate.KeyByRealIP(r)
	if err != nil {
		return false
	}
	_, ok := rl.exemptIPs[ip]
	return ok
}

func hasPrincipal(r *http.Request) bool {
	_, ok := auth.FromContext(r.Context())
	return ok
}

func principalKey(r *http.Request) (string, error) {
	if user, ok := auth.FromContext(r.Context()); ok {
		return "user:" + user.UserID, nil
	}
	ip, err := httprate.KeyByRealIP(r)
	return "ip:" + ip, err
}

func (rl *RateLimiter) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	key, _ := principalKey(r)
	rl.logger.Warn("rate limit exceeded",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("key", key),
	)
	w.Header().Set("Retry-After", "60")
	domain.WriteProblem(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}
