// Package routemodel is the serialisation-first output model every external
// adapter consumes (spec §4.9): PlanRoute enriches a routeplanner.Path with
// system attributes and, when a Loadout is supplied, fuel and heat
// projections.
package routemodel

import (
	"github.com/evefrontier/routecore/pkg/coreerr"
	"github.com/evefrontier/routecore/pkg/fuel"
	"github.com/evefrontier/routecore/pkg/graph"
	"github.com/evefrontier/routecore/pkg/heat"
	"github.com/evefrontier/routecore/pkg/routeplanner"
	"github.com/evefrontier/routecore/pkg/spatialindex"
	"github.com/evefrontier/routecore/pkg/starmap"
)

// EdgeKind mirrors graph.EdgeKind plus the Start case a RouteStep needs.
type EdgeKind string

const (
	EdgeStart   EdgeKind = "Start"
	EdgeGateOut EdgeKind = "Gate"
	EdgeJumpOut EdgeKind = "Jump"
)

// SystemRef is the attribute bundle attached to origin/destination and each
// RouteStep (spec §4.9).
type SystemRef struct {
	ID              starmap.SystemID `json:"id"`
	Name            string           `json:"name"`
	Position        starmap.Position `json:"position"`
	MinTemperatureK float64          `json:"min_temperature_k"`
	PlanetCount     uint32           `json:"planet_count,omitempty"`
	MoonCount       uint32           `json:"moon_count,omitempty"`
}

// FuelProjection is the per-hop fuel state attached to a RouteStep.
type FuelProjection struct {
	HopCostUnits    uint64  `json:"hop_cost_units"`
	CumulativeUnits uint64  `json:"cumulative_units"`
	RemainingUnits  *uint64 `json:"remaining_units,omitempty"`
}

// HeatProjection is the per-hop heat state attached to a RouteStep.
type HeatProjection struct {
	HopHeat        float64 `json:"hop_heat"`
	CumulativeHeat float64 `json:"cumulative_heat"`
	Warning        string  `json:"warning,omitempty"`
}

// RouteStep is one vertex of the route, in traversal order (spec §4.9).
type RouteStep struct {
	SystemID        starmap.SystemID `json:"system_id"`
	Name            string           `json:"name"`
	Position        starmap.Position `json:"position"`
	MinTemperatureK float64          `json:"min_temperature_k"`
	PlanetCount     uint32           `json:"planet_count"`
	MoonCount       uint32           `json:"moon_count"`
	EdgeKind        EdgeKind         `json:"edge_kind"`
	DistanceLy      *float64         `json:"distance_ly,omitempty"`
	BlackHole       bool             `json:"black_hole"`

	Fuel *FuelProjection `json:"fuel,omitempty"`
	Heat *HeatProjection `json:"heat,omitempty"`
}

// FuelSummary is the route-level fuel rollup (spec §4.9).
type FuelSummary struct {
	TotalUnitsCeil     uint64   `json:"total_units_ceil"`
	RemainingUnitsCeil *uint64  `json:"remaining_units_ceil,omitempty"`
	ShipName           string   `json:"ship_name"`
	Warnings           []string `json:"warnings,omitempty"`
}

// HeatSummary is the route-level heat rollup (spec §4.9).
type HeatSummary struct {
	Total           float64  `json:"total"`
	Warnings        []string `json:"warnings,omitempty"`
	CriticalReached bool     `json:"critical_reached"`
}

// RouteSummary is the complete, stable output model plan_route returns
// (spec §4.9): snake_case JSON, nullable optionals omitted.
type RouteSummary struct {
	Algorithm       string       `json:"algorithm"`
	Origin          SystemRef    `json:"origin"`
	Destination     SystemRef    `json:"destination"`
	Steps           []RouteStep  `json:"steps"`
	HopCount        uint32       `json:"hop_count"`
	GateHops        uint32       `json:"gate_hops"`
	SpatialHops     uint32       `json:"spatial_hops"`
	TotalDistanceLy *float64     `json:"total_distance_ly,omitempty"`
	Fuel            *FuelSummary `json:"fuel,omitempty"`
	Heat            *HeatSummary `json:"heat,omitempty"`
	EstimateWarning *string      `json:"estimate_warning,omitempty"`
}

func systemRef(sm *starmap.Starmap, id starmap.SystemID) SystemRef {
	sys := sm.Get(id)
	if sys == nil {
		return SystemRef{ID: id}
	}
	return SystemRef{
		ID:              sys.ID,
		Name:            sys.Name,
		Position:        sys.Position,
		MinTemperatureK: sys.MinExternalTemperatureK,
		PlanetCount:     sys.PlanetCount,
		MoonCount:       sys.MoonCount,
	}
}

func algorithmName(a routeplanner.Algorithm) string {
	switch a {
	case routeplanner.BFS:
		return "bfs"
	case routeplanner.Dijkstra:
		return "dijkstra"
	default:
		return "a-star"
	}
}

// PlanRoute is the top-level library entrypoint (spec §6): resolves the
// search via routeplanner.Plan, then enriches the resulting Path into a
// stable RouteSummary, optionally attaching fuel/heat projections when
// request.Loadout is set.
func PlanRoute(sm *starmap.Starmap, index *spatialindex.Index, request routeplanner.Request) (*RouteSummary, *coreerr.Error) {
	path, err := routeplanner.Plan(sm, index, request)
	if err != nil {
		return nil, err
	}
	return enrich(sm, request, path), nil
}

func enrich(sm *starmap.Starmap, request routeplanner.Request, path *routeplanner.Path) *RouteSummary {
	steps := make([]RouteStep, len(path.Steps))
	var gateHops, spatialHops uint32

	for i, s := range path.Steps {
		sys := sm.Get(s.System)
		step := RouteStep{SystemID: s.System}
		if sys != nil {
			step.Name = sys.Name
			step.Position = sys.Position
			step.MinTemperatureK = sys.MinExternalTemperatureK
			step.PlanetCount = sys.PlanetCount
			step.MoonCount = sys.MoonCount
			step.BlackHole = sys.IsBlackHole()
		}

		switch {
		case s.IsStart:
			step.EdgeKind = EdgeStart
		case s.Kind == graph.EdgeGate:
			step.EdgeKind = EdgeGateOut
			d := 0.0
			step.DistanceLy = &d
			gateHops++
		default:
			step.EdgeKind = EdgeJumpOut
			d := s.DistanceLy
			step.DistanceLy = &d
			spatialHops++
		}
		steps[i] = step
	}

	summary := &RouteSummary{
		Algorithm:   algorithmName(request.Algorithm),
		Origin:      systemRef(sm, request.Origin),
		Destination: systemRef(sm, request.Destination),
		Steps:       steps,
		HopCount:    uint32(len(steps) - 1),
		GateHops:    gateHops,
		SpatialHops: spatialHops,
	}
	if spatialHops > 0 {
		d := path.TotalDistanceLy
		summary.TotalDistanceLy = &d
	}

	if request.Loadout != nil {
		attachFuel(summary, request.Loadout, path)
		attachHeat(summary, request.Loadout, path)
		warning := "values approximate ±10%"
		summary.EstimateWarning = &warning
	}

	return summary
}

func asFuelHops(path *routeplanner.Path) []fuel.Hop {
	hops := make([]fuel.Hop, 0, len(path.Steps)-1)
	for _, s := range path.Steps {
		if s.IsStart {
			continue
		}
		hops = append(hops, fuel.Hop{IsGate: s.Kind == graph.EdgeGate, DistanceLy: s.DistanceLy})
	}
	return hops
}

// asHeatHops shares the fuel engine's mass trajectory (fuel.MassAtHop) so
// that, in dynamic-mass mode, heat is computed against the same depleting
// mass the fuel projection uses for the same hop (spec §4.6).
func asHeatHops(path *routeplanner.Path, l *fuel.Loadout) []heat.Hop {
	fuelHops := asFuelHops(path)
	masses := fuel.MassAtHop(l, fuelHops)

	hops := make([]heat.Hop, len(fuelHops))
	for i, fh := range fuelHops {
		hops[i] = heat.Hop{
			IsGate:         fh.IsGate,
			DistanceLy:     fh.DistanceLy,
			TotalMassKg:    masses[i],
			HullMassOnlyKg: l.Ship.BaseMassKg,
		}
	}
	return hops
}

func attachFuel(summary *RouteSummary, l *fuel.Loadout, path *routeplanner.Path) {
	steps := fuel.Project(l, asFuelHops(path))

	var warnings []string
	for i, step := range steps {
		stepIdx := i + 1 // steps[0] is Start, has no fuel projection
		remaining := fuel.CeilUnits(*step.Remaining)
		summary.Steps[stepIdx].Fuel = &FuelProjection{
			HopCostUnits:    fuel.CeilUnits(step.HopCost),
			CumulativeUnits: fuel.CeilUnits(step.Cumulative),
			RemainingUnits:  &remaining,
		}
		if step.Warning != "" {
			warnings = append(warnings, step.Warning)
		}
	}

	total := uint64(0)
	var remaining *uint64
	if len(steps) > 0 {
		total = fuel.CeilUnits(steps[len(steps)-1].Cumulative)
		r := fuel.CeilUnits(*steps[len(steps)-1].Remaining)
		remaining = &r
	}
	summary.Fuel = &FuelSummary{
		TotalUnitsCeil:     total,
		RemainingUnitsCeil: remaining,
		ShipName:           l.Ship.Name,
		Warnings:           warnings,
	}
}

func attachHeat(summary *RouteSummary, l *fuel.Loadout, path *routeplanner.Path) {
	steps, criticalReached := heat.Project(asHeatHops(path, l))

	var warnings []string
	for i, step := range steps {
		stepIdx := i + 1
		summary.Steps[stepIdx].Heat = &HeatProjection{
			HopHeat:        step.HopHeat,
			CumulativeHeat: step.CumulativeHeat,
			Warning:        step.Warning,
		}
		if step.Warning != "" {
			warnings = append(warnings, step.Warning)
		}
	}

	total := 0.0
	if len(steps) > 0 {
		total = steps[len(steps)-1].CumulativeHeat
	}
	summary.Heat = &HeatSummary{
		Total:           total,
		Warnings:        warnings,
		CriticalReached: criticalReached,
	}
}
