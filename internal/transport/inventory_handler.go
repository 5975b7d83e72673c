package transport

import (
	"encoding/json"
	"net/http"

	"fastfood-be/internal/inventory"
	"fastfood-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type InventoryHandler struct {
	Service inventory.Service
}

type AdjustReq struct {
	QuantityDelta int64   `json:"quantityDelta"`
	Type          string  `json:"type"`
	Reason        string  `json:"reason"`
	ReferenceID   *string `json:"referenceId,omitempty"`
}

func (h *InventoryHandler) Register(r, writes chi.Router) {
	r.Get("/inventory/low-stock", h.lowStock)
	r.Get("/inventory/{ingredientId}", h.get)
	r.Get("/inventory/{ingredientId}/movements", h.movements)
	r.Get("/inventory/{ingredientId}/reconciliation", h.reconcile)
	writes.Post("/inventory/{ingredientId}/adjustments", h.adjust)
}

func ingredientID(r *http.Request) (int64, error) {
	return utils.ParseInt64(chi.URLParam(r, "ingredientId"))
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := ingredientID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	var req AdjustReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	adj, err := h.Service.AdjustInventory(r.Context(), inventory.AdjustInput{
		IngredientID: id,
		Delta:        req.QuantityDelta,
		Type:         inventory.MovementType(req.Type),
		Reason:       req.Reason,
		ReferenceID:  req.ReferenceID,
	})
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, adj)
}

func (h *InventoryHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := ingredientID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	item, err := h.Service.GetInventory(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, item)
}

func (h *InventoryHandler) movements(w http.ResponseWriter, r *http.Request) {
	id, err := ingredientID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	mvs, err := h.Service.ListMovements(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if mvs == nil {
		mvs = []inventory.Movement{}
	}
	utils.WriteSuccess(w, http.StatusOK, mvs)
}

func (h *InventoryHandler) reconcile(w http.ResponseWriter, r *http.Request) {
	id, err := ingredientID(r)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	rec, err := h.Service.Reconcile(r.Context(), id)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, rec)
}

func (h *InventoryHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListLowStock(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if items == nil {
		items = []inventory.Item{}
	}
	utils.WriteSuccess(w, http.StatusOK, items)
}
