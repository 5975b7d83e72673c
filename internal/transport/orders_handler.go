package transport

import (
	"encoding/json"
	"net/http"

	"fastfood-be/internal/inventory"
	"fastfood-be/internal/limiter"
	"fastfood-be/internal/logger"
	appmw "fastfood-be/internal/middleware"
	"fastfood-be/internal/order"
	"fastfood-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	Service order.Service
	Ledger  inventory.Service
	Guard   *limiter.Guard
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

type InventoryCheckResp struct {
	OrderID    string `json:"orderId"`
	Sufficient bool   `json:"sufficient"`
}

// Register mounts write endpoints on writes, which may carry extra middleware.
func (h *OrdersHandler) Register(r, writes chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/history", h.getHistory)
	r.Get("/orders/{id}/inventory-check", h.inventoryCheck)
	writes.Patch("/orders/{id}/status", h.updateStatus)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req order.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if req.UserID != "" {
		ctx = logger.WithUserID(ctx, req.UserID)
	}

	if h.Guard != nil {
		if err := h.Guard.CheckEntry(ctx, appmw.ClientIP(r), ""); err != nil {
			utils.WriteError(w, err)
			return
		}
		if req.UserID != "" {
			if err := h.Guard.CheckAccount(ctx, req.UserID); err != nil {
				utils.WriteError(w, err)
				return
			}
		}
	}

	placement, err := h.Service.PlaceOrder(ctx, req)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, placement)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	var filter order.ListFilter

	if s := r.URL.Query().Get("status"); s != "" {
		st, err := order.ParseStatus(s)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		filter.Status = &st
	}
	if u := r.URL.Query().Get("userId"); u != "" {
		filter.UserID = &u
	}

	var err error
	if filter.Limit, err = utils.QueryInt(r, "limit", order.DefaultListLimit); err != nil {
		utils.WriteError(w, err)
		return
	}
	if filter.Offset, err = utils.QueryInt(r, "offset", 0); err != nil {
		utils.WriteError(w, err)
		return
	}

	orders, err := h.Service.ListOrders(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	utils.WriteSuccess(w, http.StatusOK, orders)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, o)
}

func (h *OrdersHandler) getHistory(w http.ResponseWriter, r *http.Request) {
	hist, err := h.Service.GetStatusHistory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, hist)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, nil)
}

func (h *OrdersHandler) inventoryCheck(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	utils.WriteSuccess(w, http.StatusOK, InventoryCheckResp{
		OrderID:    id,
		Sufficient: h.Ledger.ValidateOrderInventory(r.Context(), id),
	})
}
