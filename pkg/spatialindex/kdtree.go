package spatialindex

import (
	"container/heap"
	"math"
	"sort"

	"github.com/evefrontier/routecore/pkg/starmap"
)

type point struct {
	id      starmap.SystemID
	pos     starmap.Position
	minTemp float64 // per-system min_external_temperature_k
}

// node is one KD-tree node; every node (not just leaves) carries a point,
// and subtreeMinTemp is the minimum min_external_temperature_k across the
// node's entire subtree, enabling temperature-aware pruning (spec §4.3).
type node struct {
	point
	axis           int
	left, right    *node
	subtreeMinTemp float64
}

func axisValue(p starmap.Position, axis int) float64 {
	switch axis {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// buildTree constructs a balanced KD-tree over points by recursively
// splitting on the median of the cycling axis, tie-breaking by system id
// ascending so the structure is a deterministic function of the point set
// (required for the save/load round-trip and for nearest-neighbour tie
// determinism, spec §5).
func buildTree(points []point, depth int) *node {
	if len(points) == 0 {
		return nil
	}
	axis := depth % 3

	sort.Slice(points, func(i, j int) bool {
		vi, vj := axisValue(points[i].pos, axis), axisValue(points[j].pos, axis)
		if vi != vj {
			return vi < vj
		}
		return points[i].id < points[j].id
	})

	mid := len(points) / 2
	n := &node{point: points[mid], axis: axis}
	n.left = buildTree(points[:mid], depth+1)
	n.right = buildTree(points[mid+1:], depth+1)

	n.subtreeMinTemp = n.point.minTemp
	if n.left != nil && n.left.subtreeMinTemp < n.subtreeMinTemp {
		n.subtreeMinTemp = n.left.subtreeMinTemp
	}
	if n.right != nil && n.right.subtreeMinTemp < n.subtreeMinTemp {
		n.subtreeMinTemp = n.right.subtreeMinTemp
	}
	return n
}

func dist(a, b starmap.Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Neighbour is one result of a radius or k-nearest query.
type Neighbour struct {
	ID         starmap.SystemID
	DistanceLy float64
}

// withinRadius collects every point within radius of center, honouring an
// optional max temperature prune: a subtree is skipped entirely if its
// minTemp exceeds the limit, otherwise individual candidates are filtered
// (spec §4.3).
func withinRadius(n *node, center starmap.Position, radius float64, maxTemp *float64) []Neighbour {
	var out []Neighbour
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if maxTemp != nil && n.subtreeMinTemp > *maxTemp {
			return
		}

		if maxTemp == nil || n.point.minTemp <= *maxTemp {
			if d := dist(center, n.point.pos); d <= radius {
				out = append(out, Neighbour{ID: n.id, DistanceLy: d})
			}
		}

		axisDist := axisValue(center, n.axis) - axisValue(n.point.pos, n.axis)
		if axisDist <= 0 {
			walk(n.left)
			if math.Abs(axisDist) <= radius {
				walk(n.right)
			}
		} else {
			walk(n.right)
			if math.Abs(axisDist) <= radius {
				walk(n.left)
			}
		}
	}
	walk(n)

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceLy != out[j].DistanceLy {
			return out[i].DistanceLy < out[j].DistanceLy
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// maxHeap orders Neighbour by descending distance so the root is always the
// worst of the current top-k (used by kNearest below).
type maxHeap []Neighbour

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	if h[i].DistanceLy != h[j].DistanceLy {
		return h[i].DistanceLy > h[j].DistanceLy
	}
	return h[i].ID > h[j].ID
}
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)        { *h = append(*h, x.(Neighbour)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// kNearest returns the k closest points to center, breaking ties by system
// id ascending (spec §5 ordering guarantees).
func kNearest(root *node, center starmap.Position, k int, maxTemp *float64) []Neighbour {
	if k <= 0 {
		return nil
	}
	h := &maxHeap{}
	heap.Init(h)

	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if maxTemp != nil && n.subtreeMinTemp > *maxTemp {
			return
		}

		if maxTemp == nil || n.point.minTemp <= *maxTemp {
			d := dist(center, n.point.pos)
			if h.Len() < k {
				heap.Push(h, Neighbour{ID: n.id, DistanceLy: d})
			} else if worst := (*h)[0]; d < worst.DistanceLy || (d == worst.DistanceLy && n.id < worst.ID) {
				heap.Pop(h)
				heap.Push(h, Neighbour{ID: n.id, DistanceLy: d})
			}
		}

		axisDist := axisValue(center, n.axis) - axisValue(n.point.pos, n.axis)
		near, far := n.left, n.right
		if axisDist > 0 {
			near, far = n.right, n.left
		}
		walk(near)
		if h.Len() < k || math.Abs(axisDist) <= (*h)[0].DistanceLy {
			walk(far)
		}
	}
	walk(root)

	out := make([]Neighbour, h.Len())
	copy(out, *h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceLy != out[j].DistanceLy {
			return out[i].DistanceLy < out[j].DistanceLy
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// flatten returns every point in the tree in id-ascending order, used to
// drive structural-equality checks and serialization.
func flatten(n *node) []point {
	var out []point
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		out = append(out, n.point)
		walk(n.left)
		walk(n.right)
	}
	walk(n)
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
