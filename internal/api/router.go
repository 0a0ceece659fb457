package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/Talin12/DataSage/internal/api/handler"
	apimw "github.com/Talin12/DataSage/internal/api/middleware"
	"github.com/Talin12/DataSage/internal/diag"
	"github.com/Talin12/DataSage/internal/query"
	"github.com/Talin12/DataSage/internal/render"
	minioclient "github.com/Talin12/DataSage/internal/store/minio"
	"github.com/Talin12/DataSage/internal/store"
)

// RouterDeps holds optional dependencies for the router. Nil fields turn the
// routes that need them into 501 responses.
type RouterDeps struct {
	Engine      *query.Engine
	Pipeline    *render.Pipeline
	MinIO       *minioclient.Client
	Diagnostics *diag.StreamSink
}

func NewRouter(logger *slog.Logger, s *store.Store, deps *RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(s.Pool())
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	if deps == nil {
		deps = &RouterDeps{}
	}
	pipeline := deps.Pipeline
	if pipeline == nil {
		pipeline = render.New(render.WithSink(diag.NewLogSink(logger)))
	}

	// Typed nil pointers must not reach the handlers' interfaces.
	var asker apihandler.Asker
	if deps.Engine != nil {
		asker = deps.Engine
	}
	var snapshots apihandler.SnapshotStore
	if deps.MinIO != nil {
		snapshots = deps.MinIO
	}
	var diagnostics apihandler.DiagnosticsReader
	if deps.Diagnostics != nil {
		diagnostics = deps.Diagnostics
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		datasets := apihandler.NewDatasetHandler(logger, s)
		r.Route("/datasets", func(r chi.Router) {
			r.Get("/", datasets.List)
			r.Get("/{id}/sample", datasets.Sample)
		})

		ask := apihandler.NewAskHandler(logger, asker, pipeline)
		r.Post("/ask", ask.Ask)
		r.Post("/dashboard", ask.Dashboard)

		rh := apihandler.NewRenderHandler(logger, pipeline)
		r.Post("/render", rh.Render)

		visualizations := apihandler.NewVisualizationHandler(logger, s, snapshots, pipeline)
		r.Route("/visualizations", func(r chi.Router) {
			r.Get("/", visualizations.List)
			r.Post("/", visualizations.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", visualizations.Get)
				r.Get("/snapshot", visualizations.Snapshot)
			})
		})

		diags := apihandler.NewDiagnosticsHandler(logger, diagnostics)
		r.Get("/diagnostics", diags.List)
	})

	return r
}
