package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/postres-app/httpx"
	"github.com/diewo77/postres-app/internal/catalog"
	"github.com/diewo77/postres-app/internal/handlers"
	"github.com/diewo77/postres-app/internal/logger"
	"github.com/diewo77/postres-app/internal/orders"
	"github.com/diewo77/postres-app/internal/store"
)

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(kv *store.KV) http.Handler {
	mux := http.NewServeMux()

	// --- Health endpoints ---
	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := kv.Ping(r.Context()); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	catalogSvc := catalog.NewService(kv)
	engine := orders.NewEngine(kv)

	// Product endpoints. List/Create via /products; Update/Delete/Toggle
	// via their own paths for simplicity.
	ph := handlers.NewProductHandler(catalogSvc)
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			ph.List(w, r)
		case http.MethodPost:
			ph.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/products/update", requirePost(ph.Update))
	mux.HandleFunc("/products/delete", requirePost(ph.Delete))
	mux.HandleFunc("/products/toggle", requirePost(ph.Toggle))

	// Order endpoints
	oh := handlers.NewOrderHandler(engine, catalogSvc)
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			oh.List(w, r)
		case http.MethodPost:
			oh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	})
	mux.HandleFunc("/orders/payment", requirePost(oh.Payment))
	mux.HandleFunc("/orders/delivery", requirePost(oh.Delivery))
	mux.HandleFunc("/orders/delete", requirePost(oh.Delete))

	// Consolidation endpoints
	ch := handlers.NewConsolidationHandler(engine)
	mux.HandleFunc("/consolidation", ch.Get)
	mux.HandleFunc("/consolidation/export", ch.Export)
	mux.HandleFunc("/consolidation/archive", requirePost(ch.Archive))
	mux.HandleFunc("/consolidation/archived", ch.Archived)

	return withRecover(withLogging(mux))
}

func requirePost(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			return
		}
		next(w, r)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.L.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("latency", time.Since(start)),
		)
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.L.Error("panic recovered", zap.Any("panic", rec))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
