package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/neomorfeo/habitta/internal/domain"
	"github.com/neomorfeo/habitta/internal/logger"
)

const bearerScheme = "bearer"

// TokenParser resolves a bearer token to the actor it identifies.
type TokenParser interface {
	Parse(token string) (domain.Actor, error)
}

type actorKey struct{}

func actorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(domain.Actor)
	return actor
}

// authenticate rejects requests without a valid bearer token and stores the
// actor on the request context.
func authenticate(api huma.API, tokens TokenParser, log *logger.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		raw, ok := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "authentication required")
			return
		}

		actor, err := tokens.Parse(raw)
		if err != nil {
			log.Debug(ctx.Context(), "rejected bearer token: "+err.Error())
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c := context.WithValue(ctx.Context(), actorKey{}, actor)
		c = log.WithFields(c, map[string]any{"user_id": actor.ID, "role": string(actor.Role)})
		next(huma.WithContext(ctx, c))
	}
}

// RequestLogger logs one line per request with its status and duration.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := log.WithField(r.Context(), "request_id", middleware.GetReqID(r.Context()))

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info(log.WithFields(ctx, map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
			}), "request completed")
		})
	}
}
