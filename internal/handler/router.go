package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"atelier/internal/metrics"
)

// RouterConfig carries what the router mounts besides the API
type RouterConfig struct {
	Events      http.Handler
	Metrics     *metrics.Registry
	CORSOrigins []string
	Logger      *log.Logger
}

// NewRouter builds the HTTP routes of the canvas service
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = h.logger
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(Recover(logger))
	r.Use(CORS(cfg.CORSOrigins))
	r.Use(Metrics(cfg.Metrics))
	r.Use(RequestLogger(logger))

	r.Get("/healthz", h.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	if cfg.Events != nil {
		r.Method(http.MethodGet, "/events", cfg.Events)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(BodyLimit(MaxBodyBytes))

		r.Route("/spaces", func(r chi.Router) {
			r.Get("/", h.ListSpaces)
			r.Post("/", h.CreateSpace)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSpace)
				r.Put("/", h.UpdateSpace)
				r.Delete("/", h.DeleteSpace)
				r.Get("/blocks", h.ListSpaceBlocks)
				r.Get("/links", h.ListSpaceLinks)
				r.Post("/layout", h.RelayoutSpace)
				r.Get("/export", h.ExportSpace)
				r.Post("/import", h.ImportSpace)
			})
		})

		r.Route("/blocks", func(r chi.Router) {
			r.Post("/", h.CreateBlock)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetBlock)
				r.Put("/", h.UpdateBlock)
				r.Delete("/", h.DeleteBlock)
				r.Post("/contents", h.AddContent)
				r.Delete("/contents/{contentID}", h.DeleteContent)
			})
		})

		r.Route("/links", func(r chi.Router) {
			r.Post("/", h.CreateLink)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetLink)
				r.Put("/", h.UpdateLink)
				r.Delete("/", h.DeleteLink)
			})
		})

		r.Get("/graph", h.GetGraph)
		r.Post("/graph/layout", h.RelayoutGlobal)
	})

	return r
}
