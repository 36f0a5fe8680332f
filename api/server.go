package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cybermap/api/handlers"
	"cybermap/config"
	"cybermap/core/dashboard"
	"cybermap/core/mapview"
	"cybermap/core/utils"
)

type ServerDeps struct {
	Dashboard *dashboard.Service
	Sync      *mapview.Synchronizer
	Stream    *handlers.MapStream
}

type Server struct {
	cfg    *config.AppConfig
	logger *utils.Logger
	deps   ServerDeps
	http   *http.Server
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *utils.Logger) *Server {
	return &Server{cfg: cfg, logger: logger, deps: deps}
}

type routeHandlers struct {
	threats *handlers.ThreatsHandler
	stats   *handlers.StatsHandler
	mapView *handlers.MapHandler
}

func (s *Server) newRouteHandlers() routeHandlers {
	return routeHandlers{
		threats: handlers.NewThreatsHandler(s.deps.Dashboard, s.logger),
		stats:   handlers.NewStatsHandler(s.deps.Dashboard),
		mapView: handlers.NewMapHandler(s.deps.Stream, s.deps.Sync, s.deps.Dashboard, s.logger),
	}
}

func (s *Server) Router() http.Handler {
	h := s.newRouteHandlers()
	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	r.Route("/api", func(apiRouter chi.Router) {
		apiRouter.Group(func(jsonRouter chi.Router) {
			jsonRouter.Use(s.jsonMiddleware)

			jsonRouter.Get("/threats", h.threats.List)
			jsonRouter.Get("/threats/{id}", h.threats.Get)
			jsonRouter.Post("/threats/{id}/select", h.threats.Select)
			jsonRouter.Get("/selected", h.threats.Selected)
			jsonRouter.Delete("/selected", h.threats.ClearSelection)
			jsonRouter.Get("/filter", h.threats.GetFilter)
			jsonRouter.Put("/filter", h.threats.UpdateFilter)

			jsonRouter.Route("/stats", func(statsRouter chi.Router) {
				statsRouter.Get("/summary", h.stats.Summary)
				statsRouter.Get("/countries", h.stats.Countries)
				statsRouter.Get("/severity", h.stats.Severity)
				statsRouter.Get("/attack-types", h.stats.AttackTypes)
				statsRouter.Get("/timeline", h.stats.Timeline)
			})

			jsonRouter.Route("/map", func(mapRouter chi.Router) {
				mapRouter.Post("/ready", h.mapView.Ready)
				mapRouter.Post("/error", h.mapView.Error)
				mapRouter.Post("/retry", h.mapView.Retry)
				mapRouter.Get("/state", h.mapView.State)
			})
		})
		// SSE endpoint sets its own content type.
		apiRouter.Get("/map/stream", h.mapView.Stream)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"map":    s.deps.Sync.State().String(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Printf("api: listening on %s", s.cfg.ListenAddr)
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
