// Package graph builds the edge relation a Route Planner searches over
// (spec §4.2): GateOnly, SpatialOnly, or Hybrid. SpatialOnly and Hybrid
// never materialize the full graph; neighbours are produced lazily from
// the spatial index, generalizing the teacher's own
// internal/mapservice/services/route_service.go buildRoutingGraph from a
// Mongo-backed map[id][]id into a pure, on-demand edge generator.
package graph

import (
	"github.com/evefrontier/routecore/pkg/spatialindex"
	"github.com/evefrontier/routecore/pkg/starmap"
)

// Mode selects which edge relation a Builder exposes.
type Mode int

const (
	GateOnly Mode = iota
	SpatialOnly
	Hybrid
)

// EdgeKind distinguishes a gate traversal from a spatial jump, carried
// through to the planner's Path so fuel/heat accounting can tell them
// apart (spec §4.2).
type EdgeKind int

const (
	EdgeGate EdgeKind = iota
	EdgeJump
)

// Edge is one candidate transition out of a vertex.
type Edge struct {
	To         starmap.SystemID
	Kind       EdgeKind
	DistanceLy float64 // 0 for EdgeGate, Euclidean distance for EdgeJump
}

// Builder produces the neighbour set of a vertex on demand, according to
// Mode.
type Builder struct {
	mode      Mode
	sm        *starmap.Starmap
	index     *spatialindex.Index
	maxJumpLy float64
}

// New constructs a Builder. index may be nil for GateOnly; maxJumpLy is
// required (>0) for SpatialOnly/Hybrid and ignored for GateOnly.
func New(mode Mode, sm *starmap.Starmap, index *spatialindex.Index, maxJumpLy float64) *Builder {
	return &Builder{mode: mode, sm: sm, index: index, maxJumpLy: maxJumpLy}
}

// Neighbours returns the candidate edges out of from. In Hybrid mode, when
// both a gate and a spatial jump exist to the same destination, the gate
// edge is preferred (listed, and the spatial duplicate suppressed) to
// minimise fuel/heat, per spec §4.2.
func (b *Builder) Neighbours(from starmap.SystemID) []Edge {
	switch b.mode {
	case GateOnly:
		return b.gateEdges(from)
	case SpatialOnly:
		return b.spatialEdges(from, nil)
	default: // Hybrid
		gate := b.gateEdges(from)
		seen := make(map[starmap.SystemID]bool, len(gate))
		for _, e := range gate {
			seen[e.To] = true
		}
		spatial := b.spatialEdges(from, seen)
		return append(gate, spatial...)
	}
}

func (b *Builder) gateEdges(from starmap.SystemID) []Edge {
	ids := b.sm.GatesOf(from)
	out := make([]Edge, 0, len(ids))
	for _, to := range ids {
		out = append(out, Edge{To: to, Kind: EdgeGate, DistanceLy: 0})
	}
	return out
}

// spatialEdges queries the spatial index for every system within
// maxJumpLy of from, skipping ids present in exclude (used in Hybrid mode
// to suppress spatial duplicates of gate edges).
func (b *Builder) spatialEdges(from starmap.SystemID, exclude map[starmap.SystemID]bool) []Edge {
	sys := b.sm.Get(from)
	if sys == nil || b.index == nil {
		return nil
	}
	neighbours := b.index.WithinRadius(sys.Position, b.maxJumpLy, nil)
	out := make([]Edge, 0, len(neighbours))
	for _, n := range neighbours {
		if n.ID == from {
			continue
		}
		if exclude != nil && exclude[n.ID] {
			continue
		}
		out = append(out, Edge{To: n.ID, Kind: EdgeJump, DistanceLy: n.DistanceLy})
	}
	return out
}
