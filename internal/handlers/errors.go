package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/postres-app/httpx"
	"github.com/diewo77/postres-app/internal/catalog"
	"github.com/diewo77/postres-app/internal/logger"
	"github.com/diewo77/postres-app/internal/orders"
	"github.com/diewo77/postres-app/internal/store"
	"github.com/diewo77/postres-app/validation"
)

// writeServiceError maps service failures onto the JSON error contract.
// Storage failures are logged with their op and key but surfaced as a
// generic notice; the operation is considered not applied.
func writeServiceError(w http.ResponseWriter, err error) {
	var se *store.StorageError
	switch {
	case errors.As(err, &se):
		logger.L.Error("storage failure",
			zap.String("op", se.Op), zap.String("key", se.Key), zap.Error(se.Err))
		httpx.JSONError(w, http.StatusInternalServerError, "storage_failed", nil)
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, orders.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, orders.ErrEmptyOrder):
		httpx.JSONError(w, http.StatusBadRequest, "empty_order", nil)
	case errors.Is(err, orders.ErrBlankCustomer):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"customerName": "required"})
	case errors.Is(err, catalog.ErrBlankName):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"name": "required"})
	case errors.Is(err, catalog.ErrInvalidPrice):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"unitPrice": "must_be_positive"})
	case errors.Is(err, orders.ErrUnknownPayment):
		httpx.JSONError(w, http.StatusBadRequest, "unknown_payment_method", nil)
	default:
		logger.L.Error("unexpected failure", zap.Error(err))
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
