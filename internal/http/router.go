package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tableq/tableq/internal/idempotency"
	"github.com/tableq/tableq/internal/observability"
	"github.com/tableq/tableq/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, idemp *idempotency.Idempotency) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(RateLimitMiddleware(rl))
	r.Use(IdempotencyMiddleware(idemp))

	r.Post("/v1/queue", h.JoinQueue)
	r.Get("/v1/queue", h.ListQueue)
	r.Get("/v1/queue/my-entry", h.GetMyEntry)
	r.Post("/v1/queue/verify", h.VerifyToken)
	r.Get("/v1/queue/{id}", h.GetQueueEntry)
	r.Patch("/v1/queue/{id}", h.UpdateQueueEntry)
	r.Delete("/v1/queue/{id}", h.RemoveQueueEntry)
	r.Get("/v1/queue/{id}/qr", h.EntryQR)

	r.Post("/v1/receipts", h.CreateReceipt)
	r.Get("/v1/receipts/my-receipts", h.MyReceipts)
	r.Get("/v1/receipts/restaurant/{restaurant}", h.RestaurantReceipts)
	r.Get("/v1/receipts/{id}", h.GetReceipt)
	r.Patch("/v1/receipts/{id}", h.AmendReceipt)

	// Webhook joins arrive without a session identity.
	r.Post("/webhook/tableq", h.JoinQueue)

	r.Get("/v1/stats", h.Stats)
	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
