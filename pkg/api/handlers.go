package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"gridplan/pkg/geo"
	"gridplan/pkg/geoio"
	"gridplan/pkg/graph"
	"gridplan/pkg/merge"
	"gridplan/pkg/msf"
	"gridplan/pkg/plan"
)

// Planner runs a planning pipeline. *plan.Planner implements it.
type Planner interface {
	Run(ctx context.Context, in plan.Input, opts plan.Options) (*plan.Result, error)
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	planner  Planner
	defaults plan.Options
	maxBody  int64
}

// NewHandlers creates handlers with the given planner. defaults supplies
// the strategy and minimum sub-network size when a request leaves them out.
func NewHandlers(planner Planner, defaults plan.Options, maxBody int64) *Handlers {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &Handlers{
		planner:  planner,
		defaults: defaults,
		maxBody:  maxBody,
	}
}

// DefaultMaxBody caps plan request bodies.
const DefaultMaxBody = 64 << 20

// HandlePlan handles POST /api/v1/plan.
func (h *Handlers) HandlePlan(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusUnsupportedMediaType, "invalid_request", "", "content type must be application/json")
		return
	}

	// Parse request.
	var req PlanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "", err.Error())
		return
	}

	opts := h.defaults
	opts.RunID = middleware.GetReqID(r.Context())
	if req.Algorithm != "" {
		s, err := msf.ParseStrategy(req.Algorithm)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "algorithm", err.Error())
			return
		}
		opts.Strategy = s
	}
	if req.SingleNetwork {
		opts.Mode = merge.Single
	}
	if req.MinNodeCount != nil {
		opts.MinNodeCount = *req.MinNodeCount
	}

	// Decode graphs.
	if len(req.Demand) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_geojson", "demand", "demand is required")
		return
	}
	in := plan.Input{}
	var err error
	in.Demand, err = geoio.ReadDemand(bytes.NewReader(req.Demand), geoio.DemandOptions{
		BudgetProperty: req.BudgetProperty,
		IDProperty:     req.IDProperty,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_geojson", "demand", err.Error())
		return
	}
	if len(req.Network) > 0 && !bytes.Equal(req.Network, []byte("null")) {
		in.Network, err = geoio.ReadNetwork(bytes.NewReader(req.Network), geoio.NetworkOptions{})
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_geojson", "network", err.Error())
			return
		}
	}

	// Plan.
	result, err := h.planner.Run(r.Context(), in, opts)
	if err != nil {
		switch {
		case errors.Is(err, geo.ErrSpatialReferenceMismatch):
			writeError(w, http.StatusUnprocessableEntity, "spatial_reference_mismatch", "", err.Error())
		case errors.Is(err, graph.ErrInvalidGraph):
			writeError(w, http.StatusBadRequest, "invalid_input", "", err.Error())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			writeError(w, http.StatusServiceUnavailable, "request_timeout", "", "")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "", "")
		}
		return
	}

	// Build response.
	writeJSON(w, http.StatusOK, PlanResponse{
		RunID: result.RunID,
		Stats: result.Stats,
		Edges: geoio.EdgeCollection(result.Ref, result.Edges),
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field, msg string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field, Message: msg})
}
