package handlers

import (
	"net/http"

	"github.com/diewo77/postres-app/httpx"
	"github.com/diewo77/postres-app/internal/orders"
)

// ConsolidationHandler serves the production rollup and the sales-cycle
// archival.
type ConsolidationHandler struct {
	Engine *orders.Engine
}

func NewConsolidationHandler(engine *orders.Engine) *ConsolidationHandler {
	return &ConsolidationHandler{Engine: engine}
}

// Get: GET /consolidation
func (h *ConsolidationHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Engine.Consolidate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

// Export: GET /consolidation/export — the shareable plain-text summary.
func (h *ConsolidationHandler) Export(w http.ResponseWriter, r *http.Request) {
	c, err := h.Engine.Consolidate(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.Text(w, http.StatusOK, c.ShareText())
}

// Archive: POST /consolidation/archive — "start new sale": moves all
// current orders into history in one transaction.
func (h *ConsolidationHandler) Archive(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.Archive(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"archived": n})
}

// Archived: GET /consolidation/archived — past sales cycles.
func (h *ConsolidationHandler) Archived(w http.ResponseWriter, r *http.Request) {
	list, err := h.Engine.Archived(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": list})
}
