package transport

import (
	"net/http"
	"time"

	"fastfood-be/internal/apperr"
	"fastfood-be/internal/limiter"
	"fastfood-be/internal/logger"
	"fastfood-be/internal/metrics"
	appmw "fastfood-be/internal/middleware"
	"fastfood-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const requestTimeout = 15 * time.Second

// Handlers groups everything the router serves. Mutations is applied to
// write endpoints other than order placement, which is guarded per user.
// Sensitive is the narrow limiter in front of admin writes.
type Handlers struct {
	Orders    *OrdersHandler
	Inventory *InventoryHandler
	Admin     *AdminHandler
	Mutations limiter.Limiter
	Sensitive limiter.Limiter
	Metrics   *metrics.Registry
}

func NewRouter(h Handlers) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, logger.RequestIDMiddleware, appmw.LoggingMiddleware, middleware.Recoverer)
	if h.Metrics != nil {
		r.Use(appmw.Metrics(h.Metrics))
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusNotFound, utils.Envelope{
			Error: &utils.ErrorBody{Code: apperr.CodeNotFound, Message: "route not found"},
		})
	})

	limited := func(r chi.Router, l limiter.Limiter) chi.Router {
		if l == nil {
			return r
		}
		return r.With(appmw.RateLimit(l, nil))
	}

	if h.Orders != nil {
		h.Orders.Register(r, limited(r, h.Mutations))
	}
	if h.Inventory != nil {
		h.Inventory.Register(r, limited(r, h.Mutations))
	}
	if h.Admin != nil {
		h.Admin.Register(r, limited(r, h.Sensitive))
	}
	return r
}
