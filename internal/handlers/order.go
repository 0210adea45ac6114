package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/diewo77/postres-app/httpx"
	"github.com/diewo77/postres-app/internal/catalog"
	"github.com/diewo77/postres-app/internal/models"
	"github.com/diewo77/postres-app/internal/orders"
	"github.com/diewo77/postres-app/validation"
)

// OrderHandler exposes the order engine. Creation resolves selections
// against today's available products, so a product toggled off after
// being picked is dropped server-side as well.
type OrderHandler struct {
	Engine  *orders.Engine
	Catalog *catalog.Service
}

func NewOrderHandler(engine *orders.Engine, cat *catalog.Service) *OrderHandler {
	return &OrderHandler{Engine: engine, Catalog: cat}
}

// List: GET /orders — sorted per the engine's ordering contract.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Engine.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}

// Create: POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CustomerName string         `json:"customerName"`
		Items        map[string]int `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("customerName", input.CustomerName, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	available, err := h.Catalog.ListAvailable(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	order, err := h.Engine.Create(r.Context(), input.CustomerName, input.Items, available)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// Payment: POST /orders/payment — toggle-off semantics on the current
// method.
func (h *OrderHandler) Payment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID     string               `json:"id"`
		Method models.PaymentStatus `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	order, err := h.Engine.SetPaymentStatus(r.Context(), input.ID, input.Method)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Delivery: POST /orders/delivery — flips the flag and returns the
// re-sorted collection for the screen to render.
func (h *OrderHandler) Delivery(w http.ResponseWriter, r *http.Request) {
	var input idReq
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	list, err := h.Engine.ToggleDelivery(r.Context(), input.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}

// Delete: POST /orders/delete
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var input idReq
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Engine.Delete(r.Context(), input.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": input.ID})
}
