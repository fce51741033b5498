package http

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"

	"github.com/neomorfeo/habitta/internal/logger"
)

// APIConfig is the Huma config with the bearer security scheme declared.
// It also installs the {success:false} error body through huma.NewError,
// which is a package-global: every huma API in the process shares it.
func APIConfig(title, version string) huma.Config {
	huma.NewError = newError

	cfg := huma.DefaultConfig(title, version)
	if cfg.Components.SecuritySchemes == nil {
		cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	cfg.Components.SecuritySchemes[bearerScheme] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	return cfg
}

// NewRouter returns a chi router with tracing, request ids, request logging
// and panic recovery installed.
func NewRouter(serviceName string, log *logger.Logger) *chi.Mux {
	router := chi.NewMux()
	router.Use(
		otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)),
		middleware.RequestID,
		RequestLogger(log),
		middleware.Recoverer,
	)
	return router
}
