// Package heat projects per-hop and cumulative heat over a route, and
// classifies it against canonical absolute thresholds (spec §4.6).
package heat

import "fmt"

// Calibration constant for the heat formula. The source repo states both
// "3 × ..." with C = 1.0 and a fixed internal C = 1e-7; this implementation
// picks the latter (DESIGN.md records the decision).
const C = 1e-7

// Canonical absolute thresholds (not per-ship).
const (
	Nominal    = 30.0
	Overheated = 90.0
	Critical   = 150.0
)

// Hop is one jump step, as seen by the heat engine. Gate hops contribute
// zero and are not expected to be passed here by callers that already know
// a hop is a gate hop, but IsGate is honoured defensively.
type Hop struct {
	IsGate         bool
	DistanceLy     float64
	TotalMassKg    float64 // mass trajectory value at the time of this hop
	HullMassOnlyKg float64 // ship base mass, excluding cargo/fuel
}

// HopHeat computes one jump's heat contribution (spec §4.6 formula).
func HopHeat(totalMassKg, distanceLy, hullMassOnlyKg float64) float64 {
	if hullMassOnlyKg <= 0 {
		return 0
	}
	return (3 * totalMassKg * distanceLy) / (C * hullMassOnlyKg)
}

// StepResult is the per-hop and cumulative heat state after applying Hop i.
type StepResult struct {
	HopHeat        float64
	CumulativeHeat float64
	Warning        string
}

// Project runs the heat engine over hops. criticalReached is true if any
// step's cumulative heat reached Critical (spec §4.6: "not-recommended but
// still returned").
func Project(hops []Hop) (steps []StepResult, criticalReached bool) {
	steps = make([]StepResult, len(hops))
	cumulative := 0.0
	overheatedWarned := false
	criticalWarned := false

	for i, hop := range hops {
		hopHeat := 0.0
		if !hop.IsGate {
			hopHeat = HopHeat(hop.TotalMassKg, hop.DistanceLy, hop.HullMassOnlyKg)
		}
		cumulative += hopHeat

		warning := ""
		if cumulative >= Critical {
			criticalReached = true
			if !criticalWarned {
				warning = "critical"
				criticalWarned = true
			}
		} else if cumulative >= Overheated && !overheatedWarned {
			warning = "overheated"
			overheatedWarned = true
		}

		steps[i] = StepResult{HopHeat: hopHeat, CumulativeHeat: cumulative, Warning: warning}
	}
	return steps, criticalReached
}

// Display renders a heat value per the spec's display rule: values
// 0 < v < 0.01 render as "<0.01" to avoid a misleading "0.00" (spec §4.6).
func Display(v float64) string {
	if v > 0 && v < 0.01 {
		return "<0.01"
	}
	return fmt.Sprintf("%.2f", v)
}
