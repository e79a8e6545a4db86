// Package plan runs the full planning pipeline: merge the existing network
// with the demand points, build the budget-constrained forest, resolve
// anchors and drop undersized sub-networks.
package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"gridplan/pkg/filter"
	"gridplan/pkg/geo"
	"gridplan/pkg/graph"
	"gridplan/pkg/merge"
	"gridplan/pkg/metrics"
	"gridplan/pkg/msf"
)

// Input holds the two graphs of a run. Either may be nil.
type Input struct {
	Demand  *graph.GeoGraph
	Network *graph.GeoGraph
}

// Options tunes a run. The zero value uses Boruvka, disjoint merging and no
// size filter.
type Options struct {
	Strategy     msf.Strategy
	Mode         merge.Mode
	MinNodeCount int
	// RunID labels logs and the result; generated when empty.
	RunID string
}

// Stats describes a finished run.
type Stats struct {
	DemandNodes     int           `json:"demand_nodes"`
	NetworkNodes    int           `json:"network_nodes"`
	Anchors         int           `json:"anchors"`
	CandidateEdges  int           `json:"candidate_edges"`
	RawEdges        int           `json:"raw_edges"`
	Edges           int           `json:"edges"`
	ConnectedDemand int           `json:"connected_demand"`
	TotalWeight     float64       `json:"total_weight"`
	Filter          filter.Stats  `json:"-"`
	Duration        time.Duration `json:"duration_ns"`
}

// Result is the planned network. Edges reference real node ids only.
type Result struct {
	RunID string
	Ref   geo.SpatialRef
	Edges []graph.Edge
	Stats Stats
}

// Planner runs planning pipelines. It is safe for concurrent use; each run
// owns its own forest and edge accumulator.
type Planner struct {
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// New creates a Planner. m may be nil.
func New(log zerolog.Logger, m *metrics.Metrics) *Planner {
	return &Planner{log: log, metrics: m}
}

// Run executes the pipeline. A reference mismatch or malformed input aborts
// the run before any output is produced.
func (p *Planner) Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	log := p.log.With().
		Str("run_id", opts.RunID).
		Str("strategy", opts.Strategy.String()).
		Str("mode", opts.Mode.String()).
		Logger()

	start := time.Now()
	res, err := p.run(ctx, log, in, opts)
	elapsed := time.Since(start)

	if err != nil {
		p.metrics.ObservePlanRun(opts.Strategy.String(), Outcome(err), elapsed, 0)
		log.Error().Err(err).Str("outcome", Outcome(err)).Msg("plan failed")
		return nil, err
	}

	res.Stats.Duration = elapsed
	p.metrics.ObservePlanRun(opts.Strategy.String(), "ok", elapsed, len(res.Edges))
	log.Info().
		Int("edges", res.Stats.Edges).
		Int("connected_demand", res.Stats.ConnectedDemand).
		Float64("total_weight", res.Stats.TotalWeight).
		Dur("duration", elapsed).
		Msg("plan finished")
	return res, nil
}

func (p *Planner) run(ctx context.Context, log zerolog.Logger, in Input, opts Options) (*Result, error) {
	// Step 1: Validate and merge.
	t := time.Now()
	merged, err := merge.Merge(in.Network, in.Demand, opts.Mode)
	if err != nil {
		return nil, err
	}
	st := Stats{
		DemandNodes:    merged.DemandLen(),
		NetworkNodes:   merged.NetworkLen(),
		Anchors:        len(merged.Anchors()),
		CandidateEdges: msf.CandidateCount(merged),
	}
	log.Debug().
		Int("demand_nodes", st.DemandNodes).
		Int("network_nodes", st.NetworkNodes).
		Int("anchors", st.Anchors).
		Int("candidate_edges", st.CandidateEdges).
		Dur("took", time.Since(t)).
		Msg("merged network and demand")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: Build the forest.
	t = time.Now()
	raw, err := msf.Build(ctx, merged, opts.Strategy)
	if err != nil {
		return nil, fmt.Errorf("build forest: %w", err)
	}
	st.RawEdges = len(raw)
	log.Debug().Int("raw_edges", st.RawEdges).Dur("took", time.Since(t)).Msg("built forest")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 3: Resolve anchors and filter.
	edges, fst := filter.MinNodes(merged.Resolve(raw), opts.MinNodeCount)
	st.Filter = fst
	st.Edges = len(edges)
	st.TotalWeight = graph.TotalWeight(edges)
	st.ConnectedDemand = connectedDemand(edges)
	log.Debug().
		Int("components", fst.Components).
		Int("grid_components", fst.GridComponents).
		Int("dropped", fst.Dropped).
		Int("dropped_nodes", fst.DroppedNodes).
		Msg("filtered sub-networks")

	var ref geo.SpatialRef
	if m := merged.Metric(); m != nil {
		ref = m.Ref()
	}
	return &Result{RunID: opts.RunID, Ref: ref, Edges: edges, Stats: st}, nil
}

func connectedDemand(edges []graph.Edge) int {
	seen := make(map[int64]struct{})
	for _, e := range edges {
		for _, id := range []graph.NodeID{e.A, e.B} {
			if id.Kind == graph.KindDemand {
				seen[id.ID] = struct{}{}
			}
		}
	}
	return len(seen)
}

// Outcome classifies a run error for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, geo.ErrSpatialReferenceMismatch):
		return "mismatch"
	case errors.Is(err, graph.ErrInvalidGraph):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
