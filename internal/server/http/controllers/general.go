package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rzbill/xstream/internal/runtime"
)

// Banner is served on GET /.
const Banner = "xstream backend is running."

// GeneralController handles endpoints that are not tied to one stream:
// the banner, health, stream listing and metrics.
type GeneralController struct {
	rt *runtime.Runtime
}

// NewGeneralController creates a new general controller.
func NewGeneralController(rt *runtime.Runtime) *GeneralController {
	return &GeneralController{rt: rt}
}

// RegisterRoutes registers general routes with the given router.
//
// /metrics is only mounted when the runtime was opened with metrics enabled.
func (c *GeneralController) RegisterRoutes(r chi.Router) {
	r.Get("/", c.handleBanner)
	r.Get("/healthz", c.handleHealth)
	r.Get("/streams", c.handleListStreams)
	if m := c.rt.Metrics(); m != nil {
		r.Handle("/metrics", m.Handler())
	}
}

func (c *GeneralController) handleBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Banner))
}

// handleHealth returns the health status of the service.
//
// Returns 200 OK with {"status": "ok"} if healthy, 503 Service Unavailable otherwise.
func (c *GeneralController) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := c.rt.CheckHealth(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "not_serving")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleListStreams lists every stream name in sorted order.
func (c *GeneralController) handleListStreams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, streamsResp{Streams: c.rt.Store().Streams(r.Context())})
}
