// Package fuel projects per-hop and cumulative fuel consumption over a
// route (spec §4.5). It is a pure function of a Ship, Loadout and the
// sequence of hop distances — no I/O, no global state.
package fuel

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/evefrontier/routecore/pkg/coreerr"
)

// massScale converts kg to the formula's mass unit (1e5 kg).
const massScale = 1e5

var validate = validator.New()

// Ship is a validated table row from the ship catalog.
type Ship struct {
	Name          string  `validate:"required"`
	BaseMassKg    float64 `validate:"required,gt=0"`
	SpecificHeat  float64 `validate:"required,gt=0"`
	FuelCapacity  float64 `validate:"required,gt=0"`
	CargoCapacity float64 `validate:"required,gt=0"`
}

// Loadout is a ship plus per-request fuel/cargo/mass-mode configuration.
type Loadout struct {
	Ship        Ship
	FuelLoad    float64 `validate:"gte=0"`
	CargoMassKg float64 `validate:"gte=0"`
	FuelQuality float64 `validate:"gte=1,lte=100"`
	DynamicMass bool
}

// NewLoadout validates ship and loadout fields using the same
// go-playground/validator struct-tag approach the teacher uses for its own
// DTOs (internal/sde/dto/validators.go), generalized from HTTP request
// validation to this core type.
func NewLoadout(ship Ship, fuelLoad, cargoMassKg, fuelQuality float64, dynamicMass bool) (*Loadout, *coreerr.Error) {
	if !finite(ship.BaseMassKg) || !finite(ship.SpecificHeat) || !finite(ship.FuelCapacity) || !finite(ship.CargoCapacity) {
		return nil, coreerr.ShipDataValidation(0, "ship", "mass/heat/capacity fields must be finite")
	}
	if err := validate.Struct(ship); err != nil {
		return nil, coreerr.ShipDataValidation(0, "ship", err.Error())
	}

	if !finite(fuelLoad) || !finite(cargoMassKg) || !finite(fuelQuality) {
		return nil, coreerr.ShipDataValidation(0, "loadout", "fuel_load/cargo_mass/fuel_quality must be finite")
	}
	l := &Loadout{Ship: ship, FuelLoad: fuelLoad, CargoMassKg: cargoMassKg, FuelQuality: fuelQuality, DynamicMass: dynamicMass}
	if err := validate.Struct(l); err != nil {
		return nil, coreerr.ShipDataValidation(0, "loadout", err.Error())
	}
	if fuelLoad > ship.FuelCapacity {
		return nil, coreerr.ShipDataValidation(0, "fuel_load", "exceeds ship fuel capacity")
	}
	return l, nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// InitialTotalMassKg returns the mass trajectory's starting value: base +
// cargo + fuel load (spec §4.5 static mode; also the dynamic mode's t=0
// value before any hop is consumed).
func (l *Loadout) InitialTotalMassKg() float64 {
	return l.Ship.BaseMassKg + l.CargoMassKg + l.FuelLoad
}

// HopCost is the raw (pre-ceiling) fuel cost of one jump hop of distanceLy
// at the given current total mass (spec §4.5 formula). Gate hops never
// call this — they cost zero by construction.
func HopCost(totalMassKg, fuelQuality, distanceLy float64) float64 {
	return (totalMassKg / massScale) * (fuelQuality / 100) * distanceLy
}

// CeilUnits externalises a raw fuel value as an integer unit count,
// rounding up (spec §4.5: "fuel values exposed to external callers are
// integer units computed with ceiling").
func CeilUnits(v float64) uint64 {
	if v <= 0 {
		return 0
	}
	return uint64(math.Ceil(v))
}

// Hop is one step of a route, as seen by the projection engines.
type Hop struct {
	IsGate     bool
	DistanceLy float64
}

// StepResult is the per-hop and cumulative fuel state after applying Hop i.
type StepResult struct {
	HopCost    float64
	Cumulative float64
	Remaining  *float64
	Warning    string
}

// NextMass returns the total mass in kg after one jump hop of distanceLy
// starting from mass, applying the same depletion-and-floor rule Project
// uses in dynamic mode (spec §4.5: mass reduced by the hop's fuel cost,
// clamped at base+cargo). In static mode mass is returned unchanged.
func (l *Loadout) NextMass(mass, distanceLy float64) float64 {
	if !l.DynamicMass {
		return mass
	}
	mass -= HopCost(mass, l.FuelQuality, distanceLy)
	if floor := l.Ship.BaseMassKg + l.CargoMassKg; mass < floor {
		mass = floor
	}
	return mass
}

// MassAtHop returns the total mass in kg at the start of each hop — the
// value HopCost is computed against for that hop. This is the single mass
// trajectory shared by Project and any other consumer (e.g. the heat
// engine) that needs per-hop mass on the same Loadout (spec §4.6: "share
// the mass trajectory with the Fuel Engine").
func MassAtHop(l *Loadout, hops []Hop) []float64 {
	out := make([]float64, len(hops))
	mass := l.InitialTotalMassKg()
	for i, hop := range hops {
		out[i] = mass
		if !hop.IsGate {
			mass = l.NextMass(mass, hop.DistanceLy)
		}
	}
	return out
}

// Project runs the fuel engine over hops, mutating no shared state. In
// dynamic mode, mass is reduced by each hop's cost (clamped at base+cargo)
// before computing the next hop's cost (spec §4.5).
func Project(l *Loadout, hops []Hop) []StepResult {
	out := make([]StepResult, len(hops))
	masses := MassAtHop(l, hops)
	cumulative := 0.0
	warned := false

	for i, hop := range hops {
		var cost float64
		if !hop.IsGate {
			cost = HopCost(masses[i], l.FuelQuality, hop.DistanceLy)
		}
		cumulative += cost
		remaining := math.Max(0, l.FuelLoad-cumulative)

		warning := ""
		if !warned {
			hasMoreHops := i < len(hops)-1
			if cumulative > l.Ship.FuelCapacity || (remaining == 0 && hasMoreHops) {
				warning = "insufficient fuel for remaining hops"
				warned = true
			}
		}

		out[i] = StepResult{HopCost: cost, Cumulative: cumulative, Remaining: &remaining, Warning: warning}
	}
	return out
}
