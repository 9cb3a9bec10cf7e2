// Package spatialindex is a persistent 3-D nearest-neighbour structure over
// system positions (spec §4.3): a balanced KD-tree used for radius queries
// and for generating spatial edges on demand without materializing the
// full O(N²) graph.
package spatialindex

import (
	"github.com/evefrontier/routecore/pkg/starmap"
)

// Index is a shared-immutable KD-tree over a Starmap's system positions. It
// holds only ids and coordinates — no owning reference into the Starmap
// (spec §3).
type Index struct {
	root           *node
	count          int
	sourceMetadata starmap.DatasetMetadata
	hasMetadata    bool
}

// Build constructs an Index from every system in sm, embedding meta as the
// v2 dataset fingerprint (spec §4.3 build invariant: the index contains
// exactly |S.systems| points, each (position, id) present in S).
func Build(sm *starmap.Starmap, meta starmap.DatasetMetadata) *Index {
	systems := sm.Systems()
	points := make([]point, len(systems))
	for i, sys := range systems {
		points[i] = point{id: sys.ID, pos: sys.Position, minTemp: sys.MinExternalTemperatureK}
	}
	return &Index{
		root:           buildTree(points, 0),
		count:          len(points),
		sourceMetadata: meta,
		hasMetadata:    true,
	}
}

// Len returns the number of points in the index.
func (idx *Index) Len() int { return idx.count }

// SourceMetadata returns the embedded dataset fingerprint, or nil for a
// v1-format index (no embedded metadata).
func (idx *Index) SourceMetadata() *starmap.DatasetMetadata {
	if !idx.hasMetadata {
		return nil
	}
	m := idx.sourceMetadata
	return &m
}

// WithinRadius returns every system within radiusLy of center, optionally
// pruned by maxTemperatureK (spec §4.3).
func (idx *Index) WithinRadius(center starmap.Position, radiusLy float64, maxTemperatureK *float64) []Neighbour {
	return withinRadius(idx.root, center, radiusLy, maxTemperatureK)
}

// KNearest returns the k closest systems to center, optionally pruned by
// maxTemperatureK (spec §4.3).
func (idx *Index) KNearest(center starmap.Position, k int, maxTemperatureK *float64) []Neighbour {
	return kNearest(idx.root, center, k, maxTemperatureK)
}

// Equal reports structural equality between two indexes: same points (by
// id, position, and min temperature) and same embedded metadata. Used by
// the round-trip property test (spec §8: "load(save(I)) == I").
func (idx *Index) Equal(other *Index) bool {
	if idx.hasMetadata != other.hasMetadata {
		return false
	}
	if idx.hasMetadata && idx.sourceMetadata != other.sourceMetadata {
		return false
	}
	a, b := flatten(idx.root), flatten(other.root)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
