package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rubberstock/internal/handlers"
	applog "rubberstock/internal/log"
	"rubberstock/internal/metrics"
)

func newRouter(collector *metrics.Collector) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestContext)
	r.Use(instrument(collector))
	r.Use(middleware.Recoverer)

	applog.Debug(context.Background(), "registering http routes")
	r.Get("/healthz", handlers.Health)
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	r.Route("/stock", func(r chi.Router) {
		r.Get("/", handlers.ListStock)
		r.Post("/", handlers.CreateStock)
		r.Get("/{name}", handlers.ShowStock)
		r.Put("/{name}", handlers.ReplaceStock)
		r.Delete("/{name}", handlers.DeleteStock)
	})
	applog.Debug(context.Background(), "route registered", "path", "/stock")

	r.Route("/formulas", func(r chi.Router) {
		r.Get("/", handlers.ListFormulas)
		r.Post("/", handlers.CreateFormula)
		r.Get("/{name}", handlers.ShowFormula)
		r.Put("/{name}", handlers.ReplaceFormula)
		r.Delete("/{name}", handlers.DeleteFormula)
	})
	applog.Debug(context.Background(), "route registered", "path", "/formulas")

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}` + "\n"))
	})
	return r
}

// requestContext attaches the request id to every log record written while
// serving the request.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := applog.WithAttrs(r.Context(), "request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrument counts served requests by route pattern and status code.
func instrument(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			collector.ObserveServer(route, strconv.Itoa(status))
		})
	}
}
