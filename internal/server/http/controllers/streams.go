package controllers

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/rzbill/xstream/internal/runtime"
	"github.com/rzbill/xstream/internal/store"
	logpkg "github.com/rzbill/xstream/pkg/log"
)

// maxBodyBytes bounds an xadd request body.
const maxBodyBytes = 1 << 20

// StreamsController serves the Redis-Streams-like endpoints over the
// runtime's store.
type StreamsController struct {
	rt     *runtime.Runtime
	logger logpkg.Logger
}

// NewStreamsController creates a new streams controller.
func NewStreamsController(rt *runtime.Runtime, logger logpkg.Logger) *StreamsController {
	if logger == nil {
		logger = logpkg.NewNopLogger()
	}
	return &StreamsController{rt: rt, logger: logger}
}

// RegisterRoutes registers stream routes with the given router.
func (c *StreamsController) RegisterRoutes(r chi.Router) {
	r.Post("/xadd/{stream}", c.handleXAdd)
	r.Get("/xrange/{stream}", c.handleXRange)
	r.Get("/xlen/{stream}", c.handleXLen)
	r.Get("/xread", c.handleXRead)
}

// streamParam returns the {stream} path segment. chi matches against
// RawPath when the request carried one, so only then is it unescaped.
func streamParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "stream")
	if r.URL.RawPath == "" {
		return name, nil
	}
	name, err := url.PathUnescape(name)
	if err != nil {
		return "", errors.Join(store.ErrInvalidInput, err)
	}
	return name, nil
}

// handleXAdd appends the JSON object body as a new entry.
//
// Optional query: ms overrides the clock used for the new ID.
func (c *StreamsController) handleXAdd(w http.ResponseWriter, r *http.Request) {
	name, err := streamParam(r)
	if err != nil {
		writeStoreError(w, r, c.logger, "xadd", err)
		return
	}
	ms, err := parseTimestamp(r.URL.Query().Get("ms"))
	if err != nil {
		writeStoreError(w, r, c.logger, "xadd", err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	newID, err := c.rt.Store().XAddJSON(r.Context(), name, body, store.AddOptions{TimestampMs: ms})
	if err != nil {
		writeStoreError(w, r, c.logger, "xadd", err)
		return
	}
	writeJSON(w, xaddResp{ID: newID.String()})
}

// handleXRange returns entries of one stream in ID order.
//
// Query: count, start, end (IDs, "-" or "+") and filter (CEL expression).
func (c *StreamsController) handleXRange(w http.ResponseWriter, r *http.Request) {
	name, err := streamParam(r)
	if err != nil {
		writeStoreError(w, r, c.logger, "xrange", err)
		return
	}
	q := r.URL.Query()
	count, err := parseCount(q.Get("count"))
	if err != nil {
		writeStoreError(w, r, c.logger, "xrange", err)
		return
	}
	items, err := c.rt.Store().XRange(r.Context(), name, store.RangeQuery{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Count:  count,
		Filter: q.Get("filter"),
	})
	if err != nil {
		writeStoreError(w, r, c.logger, "xrange", err)
		return
	}
	writeJSON(w, items)
}

// handleXLen returns {"length": N}; unknown streams have length 0.
func (c *StreamsController) handleXLen(w http.ResponseWriter, r *http.Request) {
	name, err := streamParam(r)
	if err != nil {
		writeStoreError(w, r, c.logger, "xlen", err)
		return
	}
	writeJSON(w, xlenResp{Length: c.rt.Store().XLen(r.Context(), name)})
}

// handleXRead reads after per-stream cursors.
//
// Query: streams ("name id name id ..."; id may be "$") and count.
func (c *StreamsController) handleXRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reqs, err := store.ParseStreamsArg(q.Get("streams"))
	if err != nil {
		writeStoreError(w, r, c.logger, "xread", err)
		return
	}
	count, err := parseCount(q.Get("count"))
	if err != nil {
		writeStoreError(w, r, c.logger, "xread", err)
		return
	}
	res, err := c.rt.Store().XRead(r.Context(), reqs, count)
	if err != nil {
		writeStoreError(w, r, c.logger, "xread", err)
		return
	}
	writeJSON(w, res)
}
