package server

import (
	"live-poll/auth"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler is implemented by every group of endpoints mounted on the router.
type Handler interface {
	Register(r chi.Router)
}

// NewRouter wires the shared middleware chain, then mounts the handlers.
// Every route sees the caller identity when a valid session token is present.
func NewRouter(log *slog.Logger, gatherer prometheus.Gatherer, cookies auth.SessionCookies,
	tokens auth.Validator, handlers ...Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(WithLogging(log))
	r.Use(auth.Authenticate(cookies, tokens))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
