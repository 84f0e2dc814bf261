package controllers

import (
	"github.com/go-chi/chi/v5"

	"github.com/rzbill/xstream/internal/runtime"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

// ControllerRegistry manages all HTTP controllers.
type ControllerRegistry struct {
	general *GeneralController
	streams *StreamsController
}

// NewControllerRegistry creates a new controller registry.
//
// It initializes all controllers with the provided runtime and logger.
func NewControllerRegistry(rt *runtime.Runtime, logger logpkg.Logger) *ControllerRegistry {
	return &ControllerRegistry{
		general: NewGeneralController(rt),
		streams: NewStreamsController(rt, logger),
	}
}

// RegisterAllRoutes registers all controller routes with the given router.
//
// This sets up the general endpoints (banner, health, stream listing,
// metrics) and the xadd/xrange/xlen/xread stream endpoints.
func (r *ControllerRegistry) RegisterAllRoutes(router chi.Router) {
	r.general.RegisterRoutes(router)
	r.streams.RegisterRoutes(router)
}
