// Package osm extracts an existing electricity network from OpenStreetMap
// power lines.
package osm

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"github.com/rs/zerolog"

	"gridplan/pkg/geo"
	"gridplan/pkg/graph"
)

// Format is an OSM file encoding.
type Format uint8

const (
	FormatPBF Format = iota
	FormatXML
)

// FormatForPath picks the encoding from a file name. ok is false for
// names that are not OSM files.
func FormatForPath(path string) (f Format, ok bool) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(name, ".pbf"):
		return FormatPBF, true
	case strings.HasSuffix(name, ".osm"), strings.HasSuffix(name, ".osm.xml"):
		return FormatXML, true
	}
	return 0, false
}

// powerLines lists power tag values that carry electricity between sites.
var powerLines = map[string]bool{
	"line":       true,
	"minor_line": true,
	"cable":      true,
}

// isPowerLine returns true if the way is part of the distribution or
// transmission network.
func isPowerLine(tags osm.Tags) bool {
	if !powerLines[tags.Find("power")] {
		return false
	}

	// Busbars only exist inside substations.
	if tags.Find("line") == "busbar" {
		return false
	}

	return true
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	// Bound keeps only links with both endpoints inside. Zero keeps all.
	Bound orb.Bound
}

// Parse reads power lines and returns them as a WGS84 network whose node
// ids are OSM node ids and whose links are way segments. The reader is
// consumed twice, so it must implement io.ReadSeeker. Progress is logged
// to the logger carried by ctx.
func Parse(ctx context.Context, rs io.ReadSeeker, format Format, opts ...ParseOptions) (*graph.GeoGraph, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	log := zerolog.Ctx(ctx)

	// Pass 1: Scan ways to collect referenced node IDs and way segments.
	referenced := make(map[osm.NodeID]struct{})
	var ways [][]osm.NodeID

	scanner := newScanner(ctx, rs, format, false)
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok || !isPowerLine(w.Tags) || len(w.Nodes) < 2 {
			continue
		}
		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			referenced[wn.ID] = struct{}{}
		}
		ways = append(ways, ids)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Debug().Int("ways", len(ways)).Int("referenced_nodes", len(referenced)).Msg("osm pass 1 complete")

	// Pass 2: Scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]orb.Point, len(referenced))
	scanner = newScanner(ctx, rs, format, true)
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referenced[n.ID]; needed {
			coords[n.ID] = n.Point()
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	g, skipped, filtered := buildNetwork(ways, coords, opt.Bound)
	if skipped > 0 {
		log.Warn().Int("segments", skipped).Msg("skipped segments with missing node coordinates")
	}
	if filtered > 0 {
		log.Debug().Int("segments", filtered).Msg("filtered segments outside bound")
	}
	log.Info().Int("nodes", len(g.Nodes)).Int("links", len(g.Links)).Msg("parsed osm power network")
	return g, nil
}

func newScanner(ctx context.Context, r io.Reader, format Format, nodes bool) osm.Scanner {
	if format == FormatXML {
		return osmxml.New(ctx, r)
	}
	s := osmpbf.New(ctx, r, 1)
	s.SkipNodes = !nodes
	s.SkipWays = nodes
	s.SkipRelations = true
	return s
}

// buildNetwork turns way node lists into deduplicated links. Nodes appear
// in id order and only when a kept link uses them.
func buildNetwork(ways [][]osm.NodeID, coords map[osm.NodeID]orb.Point, bound orb.Bound) (g *graph.GeoGraph, skipped, filtered int) {
	useBound := !bound.IsZero()
	used := make(map[osm.NodeID]struct{})
	seen := make(map[graph.Link]struct{})
	g = &graph.GeoGraph{Ref: geo.WGS84}

	for _, w := range ways {
		for i := 0; i < len(w)-1; i++ {
			from, to := w[i], w[i+1]
			if from == to {
				continue
			}
			fp, fromOk := coords[from]
			tp, toOk := coords[to]
			if !fromOk || !toOk {
				skipped++
				continue
			}
			if useBound && (!bound.Contains(fp) || !bound.Contains(tp)) {
				filtered++
				continue
			}

			l := graph.Link{A: int64(min(from, to)), B: int64(max(from, to))}
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			g.Links = append(g.Links, l)
			used[from] = struct{}{}
			used[to] = struct{}{}
		}
	}

	ids := make([]osm.NodeID, 0, len(used))
	for id := range used {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	g.Nodes = make([]graph.Node, len(ids))
	for i, id := range ids {
		g.Nodes[i] = graph.Node{ID: int64(id), Point: coords[id]}
	}
	return g, skipped, filtered
}
