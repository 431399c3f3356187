package middleware

import (
	"net/http"
	"slices"

	"github.com/SanekxArcs/vdg-app-demo-sub000/internal/config"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// isDevelopment reports whether cross-origin requests from anywhere are acceptable
func isDevelopment(environment string) bool {
	return environment == "development" || environment == "local" || environment == ""
}

// CORS builds the cross-origin middleware for the dashboard front end.
//
// Explicit origins (wildcard subdomains such as https://*.vdg.pl included) are matched by
// go-chi/cors. A bare "*" echoes any origin. With no origins configured, development allows
// all and every other environment denies all.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	anyOrigin := func(r *http.Request, origin string) bool { return origin != "" }

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !isDevelopment(environment) {
			logger.Warn("CORS allows every origin outside development", zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS configured with explicit origins", zap.Strings("origins", cfg.AllowedOrigins))
	case isDevelopment(environment):
		options.AllowOriginFunc = anyOrigin
		logger.Info("CORS allows all origins in development")
	default:
		// an empty AllowedOrigins would mean "*" to go-chi/cors
		options.AllowOriginFunc = func(r *http.Request, origin string) bool { return false }
		logger.Warn("CORS has no allowed origins, cross-origin requests are denied", zap.String("environment", environment))
	}

	return cors.Handler(options)
}
