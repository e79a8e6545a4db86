package api

import (
	"encoding/json"

	"github.com/paulmach/orb/geojson"

	"gridplan/pkg/plan"
)

// PlanRequest is the JSON body for POST /api/v1/plan.
type PlanRequest struct {
	// Demand is a GeoJSON FeatureCollection of Points.
	Demand json.RawMessage `json:"demand"`
	// Network is an optional GeoJSON FeatureCollection of lines and points.
	Network json.RawMessage `json:"network,omitempty"`

	BudgetProperty string `json:"budget_property,omitempty"`
	IDProperty     string `json:"id_property,omitempty"`
	Algorithm      string `json:"algorithm,omitempty"`
	SingleNetwork  bool   `json:"single_network,omitempty"`
	MinNodeCount   *int   `json:"min_node_count,omitempty"`
}

// PlanResponse is the JSON response for a successful plan.
type PlanResponse struct {
	RunID string                     `json:"run_id"`
	Stats plan.Stats                 `json:"stats"`
	Edges *geojson.FeatureCollection `json:"edges"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
