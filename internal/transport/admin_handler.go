package transport

import (
	"net/http"

	"fastfood-be/internal/breaker"
	"fastfood-be/internal/metrics"
	"fastfood-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	Breakers *breaker.Set
	Metrics  *metrics.Registry
}

func (h *AdminHandler) Register(r, writes chi.Router) {
	r.Get("/admin/breakers", h.listBreakers)
	writes.Post("/admin/breakers/{name}/reset", h.resetBreaker)
	if h.Metrics != nil {
		r.Get("/admin/metrics", h.listMetrics)
	}
}

func (h *AdminHandler) listMetrics(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, h.Metrics.Snapshot())
}

func (h *AdminHandler) listBreakers(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, h.Breakers.Snapshot())
}

func (h *AdminHandler) resetBreaker(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.Breakers.Reset(name); err != nil {
		utils.WriteError(w, err)
		return
	}

	cb, _ := h.Breakers.Get(name)
	utils.WriteSuccess(w, http.StatusOK, breaker.Snapshot{
		Name:     cb.Name(),
		State:    cb.State(),
		Failures: cb.Failures(),
	})
}
