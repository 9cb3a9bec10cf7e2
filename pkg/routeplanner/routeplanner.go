// Package routeplanner searches the graph a Builder exposes for a path
// between two systems under a uniform constraint predicate (spec §4.4).
// The priority-queue search loop generalizes the teacher's own Dijkstra
// (internal/mapservice/services/route_service.go: container/heap
// PriorityQueue, parent map, path reconstruction) from a plain distance-only
// queue into one keyed by (distance, insertion_seq) for deterministic
// ordering, and adds A*'s admissible heuristic and BFS's FIFO frontier
// alongside it.
package routeplanner

import (
	"container/heap"
	"math"

	"github.com/evefrontier/routecore/pkg/coreerr"
	"github.com/evefrontier/routecore/pkg/fuel"
	"github.com/evefrontier/routecore/pkg/graph"
	"github.com/evefrontier/routecore/pkg/heat"
	"github.com/evefrontier/routecore/pkg/spatialindex"
	"github.com/evefrontier/routecore/pkg/starmap"
)

// Algorithm selects the search strategy.
type Algorithm int

const (
	AStar Algorithm = iota
	Dijkstra
	BFS
)

// Request is every parameter plan_route accepts (spec §4.4).
type Request struct {
	Origin      starmap.SystemID
	Destination starmap.SystemID
	Algorithm   Algorithm

	MaxJumpLy       float64 // required for SpatialOnly/Hybrid
	Avoid           map[starmap.SystemID]bool
	AvoidGates      bool
	MaxTemperatureK *float64

	AvoidCriticalHeat bool
	Loadout           *fuel.Loadout // required if AvoidCriticalHeat
}

// Step is one vertex of a reconstructed Path, carrying the edge used to
// reach it (zero Kind/DistanceLy for the origin).
type Step struct {
	System     starmap.SystemID
	Kind       graph.EdgeKind
	IsStart    bool
	DistanceLy float64
}

// Path is the ordered sequence of Steps from origin to destination,
// inclusive of both endpoints.
type Path struct {
	Steps           []Step
	TotalDistanceLy float64
}

// Plan runs the algorithm request.Algorithm selects over sm using the
// appropriate graph.Mode, honouring every admit() constraint (spec §4.4).
// index may be nil only when request.Algorithm is BFS.
func Plan(sm *starmap.Starmap, index *spatialindex.Index, request Request) (*Path, *coreerr.Error) {
	if sm.Get(request.Origin) == nil {
		return nil, coreerr.InvalidRequest("origin", "unknown system id")
	}
	if sm.Get(request.Destination) == nil {
		return nil, coreerr.InvalidRequest("destination", "unknown system id")
	}
	if request.AvoidGates && request.MaxJumpLy <= 0 {
		return nil, coreerr.InvalidRequest("max_jump_ly", "required when avoid_gates is set")
	}
	if request.Algorithm != BFS && request.MaxJumpLy <= 0 {
		return nil, coreerr.InvalidRequest("max_jump_ly", "required for Dijkstra/A* (Hybrid or SpatialOnly edge mode)")
	}
	if request.AvoidCriticalHeat && request.Loadout == nil {
		return nil, coreerr.InvalidRequest("loadout", "required when avoid_critical_heat is set")
	}

	mode := graph.Hybrid
	switch {
	case request.AvoidGates:
		mode = graph.SpatialOnly
	case request.Algorithm == BFS:
		mode = graph.GateOnly
	}

	builder := graph.New(mode, sm, index, request.MaxJumpLy)

	if request.Algorithm == BFS {
		return bfs(sm, builder, request)
	}
	return dijkstraOrAStar(sm, builder, request)
}

// admit is the constraint predicate shared by every algorithm (spec §4.4).
// cumulativeHeat is the heat already accumulated on the path reaching from,
// and currentMassKg is that path's current total mass (both used only when
// request.AvoidCriticalHeat is set — currentMassKg reflects the Loadout's
// mass trajectory so dynamic-mass mode prunes against the correct, depleted
// mass rather than the loadout's static initial mass).
func admit(sm *starmap.Starmap, request Request, to starmap.SystemID, edge graph.Edge, cumulativeHeat, currentMassKg float64) bool {
	if request.Avoid[to] && to != request.Origin && to != request.Destination {
		return false
	}
	if request.MaxTemperatureK != nil && to != request.Origin && to != request.Destination {
		sys := sm.Get(to)
		if sys != nil && sys.MinExternalTemperatureK > *request.MaxTemperatureK {
			return false
		}
	}
	if edge.Kind == graph.EdgeJump && edge.DistanceLy > request.MaxJumpLy {
		return false
	}
	if request.AvoidCriticalHeat && request.Loadout != nil {
		hopHeat := 0.0
		if edge.Kind == graph.EdgeJump {
			hopHeat = heat.HopHeat(currentMassKg, edge.DistanceLy, request.Loadout.Ship.BaseMassKg)
		}
		if cumulativeHeat+hopHeat >= heat.Critical {
			return false
		}
	}
	return true
}

type parentInfo struct {
	from starmap.SystemID
	kind graph.EdgeKind
	dist float64
}

func bfs(sm *starmap.Starmap, builder *graph.Builder, request Request) (*Path, *coreerr.Error) {
	if request.Origin == request.Destination {
		return &Path{Steps: []Step{{System: request.Origin, IsStart: true}}}, nil
	}

	visited := map[starmap.SystemID]bool{request.Origin: true}
	parent := map[starmap.SystemID]parentInfo{}
	frontier := []starmap.SystemID{request.Origin}
	heatAt := map[starmap.SystemID]float64{request.Origin: 0}
	massAt := map[starmap.SystemID]float64{}
	if request.Loadout != nil {
		massAt[request.Origin] = request.Loadout.InitialTotalMassKg()
	}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		for _, edge := range builder.Neighbours(current) {
			if visited[edge.To] {
				continue
			}
			if !admit(sm, request, edge.To, edge, heatAt[current], massAt[current]) {
				continue
			}
			visited[edge.To] = true
			heatAt[edge.To], massAt[edge.To] = heatAt[current], massAt[current]
			if edge.Kind == graph.EdgeJump && request.Loadout != nil {
				heatAt[edge.To] += heat.HopHeat(massAt[current], edge.DistanceLy, request.Loadout.Ship.BaseMassKg)
				massAt[edge.To] = request.Loadout.NextMass(massAt[current], edge.DistanceLy)
			}
			parent[edge.To] = parentInfo{from: current, kind: edge.Kind, dist: edge.DistanceLy}
			if edge.To == request.Destination {
				return buildPath(reconstructFrom(parent, request.Destination)), nil
			}
			frontier = append(frontier, edge.To)
		}
	}
	return nil, coreerr.UnreachableGoal()
}

// searchNode is one entry in the Dijkstra/A* priority queue.
type searchNode struct {
	id           starmap.SystemID
	distance     float64 // g(n): best known distance from origin
	priority     float64 // g(n) for Dijkstra, g(n)+h(n) for A*
	insertionSeq int
	index        int // heap bookkeeping
}

type nodeQueue []*searchNode

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority < q[j].priority
	}
	return q[i].insertionSeq < q[j].insertionSeq
}
func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *nodeQueue) Push(x any) {
	n := x.(*searchNode)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*q = old[:n-1]
	return item
}

func dijkstraOrAStar(sm *starmap.Starmap, builder *graph.Builder, request Request) (*Path, *coreerr.Error) {
	dest := sm.Get(request.Destination)

	heuristic := func(starmap.SystemID) float64 { return 0 }
	if request.Algorithm == AStar {
		heuristic = func(id starmap.SystemID) float64 {
			sys := sm.Get(id)
			if sys == nil || dest == nil {
				return 0
			}
			return euclid(sys.Position, dest.Position)
		}
	}

	best := map[starmap.SystemID]float64{request.Origin: 0}
	heatAt := map[starmap.SystemID]float64{request.Origin: 0}
	massAt := map[starmap.SystemID]float64{}
	if request.Loadout != nil {
		massAt[request.Origin] = request.Loadout.InitialTotalMassKg()
	}
	parent := map[starmap.SystemID]parentInfo{}
	visited := map[starmap.SystemID]bool{}

	pq := &nodeQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, &searchNode{id: request.Origin, distance: 0, priority: heuristic(request.Origin), insertionSeq: seq})
	seq++

	for pq.Len() > 0 {
		current := heap.Pop(pq).(*searchNode)
		if visited[current.id] {
			continue
		}
		visited[current.id] = true

		if current.id == request.Destination {
			return buildPath(reconstructFrom(parent, request.Destination)), nil
		}

		for _, edge := range builder.Neighbours(current.id) {
			if visited[edge.To] {
				continue
			}
			currentMass := massAt[current.id]
			if !admit(sm, request, edge.To, edge, heatAt[current.id], currentMass) {
				continue
			}

			newDist := current.distance + edge.DistanceLy
			if old, ok := best[edge.To]; ok && newDist >= old {
				continue
			}

			hopHeat := 0.0
			nextMass := currentMass
			if edge.Kind == graph.EdgeJump && request.Loadout != nil {
				hopHeat = heat.HopHeat(currentMass, edge.DistanceLy, request.Loadout.Ship.BaseMassKg)
				nextMass = request.Loadout.NextMass(currentMass, edge.DistanceLy)
			}

			best[edge.To] = newDist
			heatAt[edge.To] = heatAt[current.id] + hopHeat
			massAt[edge.To] = nextMass
			parent[edge.To] = parentInfo{from: current.id, kind: edge.Kind, dist: edge.DistanceLy}

			heap.Push(pq, &searchNode{id: edge.To, distance: newDist, priority: newDist + heuristic(edge.To), insertionSeq: seq})
			seq++
		}
	}
	return nil, coreerr.UnreachableGoal()
}

// reconstructFrom walks parent back from dest to the unparented origin,
// producing Steps in origin-to-dest order.
func reconstructFrom(parent map[starmap.SystemID]parentInfo, dest starmap.SystemID) []Step {
	steps := []Step{}
	id := dest
	for {
		p, ok := parent[id]
		if !ok {
			steps = append([]Step{{System: id, IsStart: true}}, steps...)
			return steps
		}
		dist := p.dist
		if p.kind == graph.EdgeGate {
			dist = 0
		}
		steps = append([]Step{{System: id, Kind: p.kind, DistanceLy: dist}}, steps...)
		id = p.from
	}
}

func euclid(a, b starmap.Position) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func buildPath(steps []Step) *Path {
	total := 0.0
	for _, s := range steps {
		if s.Kind == graph.EdgeJump {
			total += s.DistanceLy
		}
	}
	return &Path{Steps: steps, TotalDistanceLy: total}
}
