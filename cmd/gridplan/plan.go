package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gridplan/pkg/config"
	"gridplan/pkg/geo"
	"gridplan/pkg/geoio"
	"gridplan/pkg/graph"
	"gridplan/pkg/osm"
	"gridplan/pkg/plan"
)

var planFlags struct {
	demand         string
	network        string
	output         string
	algorithm      string
	minNodeCount   int
	singleNetwork  bool
	budgetProperty string
	idProperty     string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a network and write its edges as GeoJSON",
	Long: `Reads demand points (GeoJSON) and an optional existing network (GeoJSON,
.osm or .osm.pbf), builds the budget-constrained forest, drops undersized
sub-networks and writes the planned edges as a GeoJSON FeatureCollection.

Flags override the values in --config.`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planFlags.demand, "demand", "", "Demand points GeoJSON")
	f.StringVar(&planFlags.network, "network", "", "Existing network (GeoJSON, .osm or .osm.pbf)")
	f.StringVarP(&planFlags.output, "output", "o", "", "Output GeoJSON (default stdout)")
	f.StringVar(&planFlags.algorithm, "algorithm", "", "Construction strategy: boruvka or kruskal")
	f.IntVar(&planFlags.minNodeCount, "min-node-count", 0, "Drop off-grid sub-networks with fewer nodes")
	f.BoolVar(&planFlags.singleNetwork, "single-network", false, "Treat the existing network as one connected grid")
	f.StringVar(&planFlags.budgetProperty, "budget-property", "", "Demand property holding the budget")
	f.StringVar(&planFlags.idProperty, "id-property", "", "Demand property holding the node id")
}

// applyPlanFlags copies explicitly set flags over cfg.
func applyPlanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("demand") {
		cfg.Demand.Path = planFlags.demand
	}
	if flags.Changed("network") {
		cfg.Network.Path = planFlags.network
	}
	if flags.Changed("output") {
		cfg.Output.Path = planFlags.output
	}
	if flags.Changed("algorithm") {
		cfg.Algorithm = planFlags.algorithm
	}
	if flags.Changed("min-node-count") {
		cfg.MinNodeCount = planFlags.minNodeCount
	}
	if flags.Changed("single-network") {
		cfg.Network.SingleNetwork = planFlags.singleNetwork
	}
	if flags.Changed("budget-property") {
		cfg.Demand.BudgetProperty = planFlags.budgetProperty
	}
	if flags.Changed("id-property") {
		cfg.Demand.IDProperty = planFlags.idProperty
	}
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyPlanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Demand.Path == "" {
		return fmt.Errorf("no demand input: set --demand or demand.path")
	}

	ctx := log.WithContext(cmd.Context())
	in, err := loadInput(ctx, cfg)
	if err != nil {
		return err
	}

	res, err := plan.New(log, nil).Run(ctx, in, plan.Options{
		Strategy:     cfg.Strategy(),
		Mode:         cfg.Mode(),
		MinNodeCount: cfg.MinNodeCount,
	})
	if err != nil {
		return err
	}

	if err := writeOutput(cfg.Output.Path, cmd.OutOrStdout(), res); err != nil {
		return err
	}
	log.Debug().Str("path", cfg.Output.Path).Int("edges", len(res.Edges)).Msg("wrote edges")
	return nil
}

// loadInput reads the demand points and, when configured, the existing
// network.
func loadInput(ctx context.Context, cfg *config.Config) (plan.Input, error) {
	var in plan.Input

	demandRef, err := optionalRef(cfg.Demand.SpatialReference)
	if err != nil {
		return in, err
	}
	err = withFile(cfg.Demand.Path, func(f *os.File) error {
		in.Demand, err = geoio.ReadDemand(f, geoio.DemandOptions{
			BudgetProperty: cfg.Demand.BudgetProperty,
			IDProperty:     cfg.Demand.IDProperty,
			Ref:            demandRef,
		})
		return err
	})
	if err != nil {
		return in, fmt.Errorf("demand %s: %w", cfg.Demand.Path, err)
	}

	if cfg.Network.Path == "" {
		return in, nil
	}
	in.Network, err = loadNetwork(ctx, cfg.Network)
	if err != nil {
		return in, fmt.Errorf("network %s: %w", cfg.Network.Path, err)
	}
	return in, nil
}

func loadNetwork(ctx context.Context, nc config.NetworkConfig) (*graph.GeoGraph, error) {
	var g *graph.GeoGraph
	err := withFile(nc.Path, func(f *os.File) error {
		var err error
		if format, ok := osm.FormatForPath(nc.Path); ok {
			g, err = osm.Parse(ctx, f, format)
			return err
		}
		ref, err := optionalRef(nc.SpatialReference)
		if err != nil {
			return err
		}
		g, err = geoio.ReadNetwork(f, geoio.NetworkOptions{Ref: ref})
		return err
	})
	return g, err
}

func optionalRef(s string) (geo.SpatialRef, error) {
	if strings.TrimSpace(s) == "" {
		return geo.SpatialRef{}, nil
	}
	return geo.ParseRef(s)
}

func withFile(path string, fn func(f *os.File) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

// writeOutput writes the planned edges to path, or to stdout when path is
// empty or "-".
func writeOutput(path string, stdout io.Writer, res *plan.Result) error {
	if path == "" || path == "-" {
		return geoio.WriteEdges(stdout, res.Ref, res.Edges)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := geoio.WriteEdges(f, res.Ref, res.Edges); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
