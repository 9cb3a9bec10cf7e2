package starmap

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/evefrontier/routecore/pkg/coreerr"
)

// Load reads a self-contained relational dataset file (SQLite) into an
// immutable Starmap. It detects which of the two known schema variants the
// file uses by probing for table presence, the way the teacher's SDE
// loader probes for known tables/collections before parsing (spec §4.1).
func Load(path string) (*Starmap, *coreerr.Error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, coreerr.IoError(path, err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return nil, coreerr.IoError(path, err)
	}

	schema, derr := detectSchema(db)
	if derr != nil {
		return nil, derr
	}

	var sm *Starmap
	switch schema {
	case SchemaLegacy:
		sm, derr = loadLegacy(db)
	case SchemaE6C3:
		sm, derr = loadE6C3(db)
	}
	if derr != nil {
		return nil, derr
	}

	sm.schema = schema
	slog.Info("starmap loaded",
		slog.String("path", path),
		slog.String("schema", string(schema)),
		slog.Int("systems", sm.Len()))
	return sm, nil
}

func tableExists(db *sql.DB, name string) bool {
	row := db.QueryRow(`SELECT 1 FROM sqlite_master WHERE type='table' AND name=?`, name)
	var x int
	return row.Scan(&x) == nil
}

func detectSchema(db *sql.DB) (SchemaVersion, *coreerr.Error) {
	switch {
	case tableExists(db, "mapSolarSystems"):
		return SchemaE6C3, nil
	case tableExists(db, "solarSystems"):
		return SchemaLegacy, nil
	default:
		return "", coreerr.DatasetFormat("no recognized solar system table found (expected solarSystems or mapSolarSystems)")
	}
}

func newStarmap() *Starmap {
	return &Starmap{
		systems: make(map[SystemID]*System),
		byName:  make(map[string]SystemID),
		gates:   make(map[SystemID]map[SystemID]struct{}),
	}
}

func (s *Starmap) addSystem(sys *System) {
	s.systems[sys.ID] = sys
	s.byName[normalizeName(sys.Name)] = sys.ID
}

// addGateSymmetric records a ↔ b, upholding the invariant that gates is
// symmetric (spec §3: "if b ∈ gates[a] then a ∈ gates[b]").
func (s *Starmap) addGateSymmetric(a, b SystemID) {
	if s.gates[a] == nil {
		s.gates[a] = make(map[SystemID]struct{})
	}
	if s.gates[b] == nil {
		s.gates[b] = make(map[SystemID]struct{})
	}
	s.gates[a][b] = struct{}{}
	s.gates[b][a] = struct{}{}
}

func loadLegacy(db *sql.DB) (*Starmap, *coreerr.Error) {
	sm := newStarmap()

	rows, err := db.Query(`SELECT id, name, x, y, z, temperature, planets, moons FROM solarSystems`)
	if err != nil {
		return nil, coreerr.DatasetFormat("solarSystems: " + err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var id uint32
		var name string
		var x, y, z, temp float64
		var planets, moons uint32
		if err := rows.Scan(&id, &name, &x, &y, &z, &temp, &planets, &moons); err != nil {
			return nil, coreerr.DatasetFormat("solarSystems row: " + err.Error())
		}
		sm.addSystem(&System{
			ID:                      SystemID(id),
			Name:                    name,
			Position:                Position{X: x, Y: y, Z: z},
			MinExternalTemperatureK: temp,
			PlanetCount:             planets,
			MoonCount:               moons,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, coreerr.DatasetFormat("solarSystems: " + err.Error())
	}

	gateRows, err := db.Query(`SELECT from_id, to_id FROM gates`)
	if err != nil {
		return nil, coreerr.DatasetFormat("gates: " + err.Error())
	}
	defer gateRows.Close()
	for gateRows.Next() {
		var a, b uint32
		if err := gateRows.Scan(&a, &b); err != nil {
			return nil, coreerr.DatasetFormat("gates row: " + err.Error())
		}
		sm.addGateSymmetric(SystemID(a), SystemID(b))
	}
	if err := gateRows.Err(); err != nil {
		return nil, coreerr.DatasetFormat("gates: " + err.Error())
	}

	return sm, nil
}

func loadE6C3(db *sql.DB) (*Starmap, *coreerr.Error) {
	sm := newStarmap()

	rows, err := db.Query(`
		SELECT solarSystemID, solarSystemName, x, y, z,
		       min_external_temperature_k, planet_count, moon_count
		FROM mapSolarSystems`)
	if err != nil {
		return nil, coreerr.DatasetFormat("mapSolarSystems: " + err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var id uint32
		var name string
		var x, y, z, temp float64
		var planets, moons uint32
		if err := rows.Scan(&id, &name, &x, &y, &z, &temp, &planets, &moons); err != nil {
			return nil, coreerr.DatasetFormat("mapSolarSystems row: " + err.Error())
		}
		sm.addSystem(&System{
			ID:                      SystemID(id),
			Name:                    name,
			Position:                Position{X: x, Y: y, Z: z},
			MinExternalTemperatureK: temp,
			PlanetCount:             planets,
			MoonCount:               moons,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, coreerr.DatasetFormat("mapSolarSystems: " + err.Error())
	}

	gateTable := "mapSolarSystemJumps"
	if !tableExists(db, gateTable) {
		gateTable = "stargates"
	}
	gateRows, err := db.Query(fmt.Sprintf(`SELECT fromSolarSystemID, toSolarSystemID FROM %s`, gateTable))
	if err != nil {
		return nil, coreerr.DatasetFormat(gateTable + ": " + err.Error())
	}
	defer gateRows.Close()
	for gateRows.Next() {
		var a, b uint32
		if err := gateRows.Scan(&a, &b); err != nil {
			return nil, coreerr.DatasetFormat(gateTable + " row: " + err.Error())
		}
		sm.addGateSymmetric(SystemID(a), SystemID(b))
	}
	if err := gateRows.Err(); err != nil {
		return nil, coreerr.DatasetFormat(gateTable + ": " + err.Error())
	}

	return sm, nil
}
