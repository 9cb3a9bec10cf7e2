// Package starmap is the read-only in-memory representation of systems and
// their gate edges (spec §4.1). It is built once by Load and shared
// read-only for the lifetime of the process.
package starmap

// SystemID identifies a System; stable across a dataset release.
type SystemID uint32

// blackHoleIDs are the well-known fixture systems with no planets and no
// moons (spec §8 scenario 8). Membership is derived, never stored.
var blackHoleIDs = map[SystemID]bool{
	30_000_001: true,
	30_000_002: true,
	30_000_003: true,
}

// Position is a 3-D coordinate in light-years.
type Position struct {
	X, Y, Z float64
}

// System is one node of the starmap.
type System struct {
	ID                      SystemID
	Name                    string
	Position                Position
	MinExternalTemperatureK float64
	PlanetCount             uint32
	MoonCount               uint32
}

// IsBlackHole reports whether id is one of the recognized black-hole
// systems. This never affects routing; it is surface-level classification
// only (spec §8 scenario 8).
func (s *System) IsBlackHole() bool {
	return blackHoleIDs[s.ID]
}

// DatasetMetadata describes the dataset release a Starmap was loaded from.
type DatasetMetadata struct {
	Checksum          [32]byte
	ReleaseTag        string
	BuildTimestampUnix int64
}

// SchemaVersion names the dataset table layout a Starmap was detected from.
type SchemaVersion string

const (
	SchemaLegacy SchemaVersion = "legacy"
	SchemaE6C3   SchemaVersion = "e6c3"
)

// Starmap owns all Systems and GateEdges for a dataset release.
type Starmap struct {
	systems  map[SystemID]*System
	byName   map[string]SystemID // normalized name -> id, total over systems
	gates    map[SystemID]map[SystemID]struct{}
	schema   SchemaVersion
	metadata DatasetMetadata
}

// Get returns the System for id, or nil if unknown.
func (s *Starmap) Get(id SystemID) *System {
	return s.systems[id]
}

// Systems returns every System in the map. The returned slice is owned by
// the caller; mutating it does not affect the Starmap.
func (s *Starmap) Systems() []*System {
	out := make([]*System, 0, len(s.systems))
	for _, sys := range s.systems {
		out = append(out, sys)
	}
	return out
}

// Len returns the total number of systems.
func (s *Starmap) Len() int { return len(s.systems) }

// GatesOf returns the ids directly gate-connected to id.
func (s *Starmap) GatesOf(id SystemID) []SystemID {
	neighbours := s.gates[id]
	out := make([]SystemID, 0, len(neighbours))
	for n := range neighbours {
		out = append(out, n)
	}
	return out
}

// HasGate reports whether a and b are directly gate-connected.
func (s *Starmap) HasGate(a, b SystemID) bool {
	n, ok := s.gates[a]
	if !ok {
		return false
	}
	_, ok = n[b]
	return ok
}

// Schema returns the detected dataset schema variant.
func (s *Starmap) Schema() SchemaVersion { return s.schema }

// Metadata returns the Starmap's dataset release metadata. Load does not
// populate it, so for a loaded Starmap this is the zero value.
func (s *Starmap) Metadata() DatasetMetadata { return s.metadata }
