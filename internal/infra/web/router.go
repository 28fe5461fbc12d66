package web

import (
	"net/http"

	"github.com/DioGolang/GoPeople/internal/infra/container"
	"github.com/DioGolang/GoPeople/internal/infra/lifetime"
	"github.com/DioGolang/GoPeople/internal/infra/web/handler"
	"github.com/DioGolang/GoPeople/internal/infra/web/middleware"
	"github.com/DioGolang/GoPeople/pkg/logger"
	"github.com/DioGolang/GoPeople/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riandyrn/otelchi"
)

type RouterConfig struct {
	ServiceName string
	Container   *container.Container
	Store       handler.Pinger
	Metrics     metrics.Metrics
	Gatherer    prometheus.Gatherer
	Log         logger.Logger
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	health, err := handler.NewHealthHandler(cfg.ServiceName, handler.WithStore("database", cfg.Store))
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(otelchi.Middleware(cfg.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestLogger(cfg.Log))
	r.Use(middleware.MetricsWrapper(cfg.Metrics))
	r.Use(chimw.Recoverer)

	r.Handle("/health", health)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	people := handler.NewPersonHandler(cfg.Container, cfg.Log)
	r.Route("/api/v1/persons", func(r chi.Router) {
		switch cfg.Container.Policy() {
		case lifetime.ScopeWide:
			r.Use(middleware.Scope(cfg.Container, cfg.Log))
		case lifetime.ProcessWide:
			r.Use(middleware.Serialize())
		}
		people.Routes(r)
	})

	return r, nil
}
