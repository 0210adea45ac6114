package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/diewo77/postres-app/httpx"
	"github.com/diewo77/postres-app/internal/catalog"
	"github.com/diewo77/postres-app/validation"
)

type ProductHandler struct {
	Svc *catalog.Service
}

func NewProductHandler(svc *catalog.Service) *ProductHandler { return &ProductHandler{Svc: svc} }

// List: GET /products — all products, or only today's with ?available=1.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		products any
		err      error
	)
	if r.URL.Query().Get("available") == "1" {
		products, err = h.Svc.ListAvailable(r.Context())
	} else {
		products, err = h.Svc.List(r.Context())
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products})
}

type productReq struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input productReq
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", input.Name, v)
	validation.PositiveDecimal("unitPrice", input.UnitPrice, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p, err := h.Svc.Add(r.Context(), input.Name, input.UnitPrice)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update: POST /products/update — replaces name and price in place.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input productReq
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("id", input.ID, v)
	validation.Required("name", input.Name, v)
	validation.PositiveDecimal("unitPrice", input.UnitPrice, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	p, err := h.Svc.Update(r.Context(), input.ID, input.Name, input.UnitPrice)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

type idReq struct {
	ID string `json:"id"`
}

// Delete: POST /products/delete — unconditional, no cascade to orders.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var input idReq
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), input.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": input.ID})
}

// Toggle: POST /products/toggle — flips today's availability.
func (h *ProductHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var input idReq
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ID == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	p, err := h.Svc.ToggleAvailability(r.Context(), input.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
