package starmap

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evefrontier/routecore/pkg/coreerr"
)

func fixture() *Starmap {
	sm := newStarmap()
	sm.addSystem(&System{ID: 30_000_100, Name: "Nod", Position: Position{X: 0, Y: 0, Z: 0}, MinExternalTemperatureK: 50})
	sm.addSystem(&System{ID: 30_000_101, Name: "Brana", Position: Position{X: 10, Y: 0, Z: 0}, MinExternalTemperatureK: 120})
	sm.addSystem(&System{ID: 30_000_102, Name: "Ardua", Position: Position{X: 5, Y: 5, Z: 0}, MinExternalTemperatureK: 90})
	sm.addSystem(&System{ID: 30_000_001, Name: "Void", Position: Position{X: -5, Y: 0, Z: 0}})
	sm.addGateSymmetric(30_000_100, 30_000_102)
	sm.addGateSymmetric(30_000_102, 30_000_101)
	sm.schema = SchemaE6C3
	return sm
}

func TestResolveExactCaseInsensitive(t *testing.T) {
	sm := fixture()
	id, err := sm.Resolve("  NOD  ")
	require.Nil(t, err)
	assert.Equal(t, SystemID(30_000_100), id)
}

func TestResolveUnknownReturnsSuggestions(t *testing.T) {
	sm := fixture()
	_, err := sm.Resolve("Nodd")
	require.NotNil(t, err)
	assert.Equal(t, coreerr.KindUnknownSystem, err.Kind)
	assert.Contains(t, err.Suggestions, "Nod")
}

func TestResolveEmptyIsInvalidRequest(t *testing.T) {
	sm := fixture()
	_, err := sm.Resolve("   ")
	require.NotNil(t, err)
	assert.Equal(t, coreerr.KindInvalidRequest, err.Kind)
}

func TestGateSymmetry(t *testing.T) {
	sm := fixture()
	for a, neighbours := range sm.gates {
		for b := range neighbours {
			assert.True(t, sm.HasGate(b, a), "gate symmetry violated for %d -> %d", a, b)
		}
	}
}

func TestBlackHoleMarker(t *testing.T) {
	sm := fixture()
	assert.True(t, sm.Get(30_000_001).IsBlackHole())
	assert.False(t, sm.Get(30_000_100).IsBlackHole())
}

func TestByNameTotalOverSystems(t *testing.T) {
	sm := fixture()
	assert.Equal(t, len(sm.systems), len(sm.byName))
}

// TestLoadE6C3Schema exercises the e6c3 dataset variant (mapSolarSystems +
// mapSolarSystemJumps), a branch the legacy-schema fixtures elsewhere in
// the suite do not reach.
func TestLoadE6C3Schema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE mapSolarSystems (
			solarSystemID INTEGER, solarSystemName TEXT, x REAL, y REAL, z REAL,
			min_external_temperature_k REAL, planet_count INTEGER, moon_count INTEGER
		);
		CREATE TABLE mapSolarSystemJumps (fromSolarSystemID INTEGER, toSolarSystemID INTEGER);
		INSERT INTO mapSolarSystems VALUES
			(30000200, 'Floseswa', 0, 0, 0, 60, 2, 1),
			(30000201, 'Hikansuto', 12, 0, 0, 55, 1, 0);
		INSERT INTO mapSolarSystemJumps VALUES (30000200, 30000201);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	sm, lerr := Load(path)
	require.Nil(t, lerr)

	assert.Equal(t, SchemaE6C3, sm.Schema())
	assert.Equal(t, 2, sm.Len())
	assert.True(t, sm.HasGate(30000200, 30000201))
	assert.True(t, sm.HasGate(30000201, 30000200))

	id, rerr := sm.Resolve("hikansuto")
	require.Nil(t, rerr)
	assert.Equal(t, SystemID(30000201), id)
}

// TestLoadE6C3SchemaFallsBackToStargatesTable covers the e6c3 variant that
// names its gate table "stargates" rather than "mapSolarSystemJumps".
func TestLoadE6C3SchemaFallsBackToStargatesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)

	_, err = db.Exec(`
		CREATE TABLE mapSolarSystems (
			solarSystemID INTEGER, solarSystemName TEXT, x REAL, y REAL, z REAL,
			min_external_temperature_k REAL, planet_count INTEGER, moon_count INTEGER
		);
		CREATE TABLE stargates (fromSolarSystemID INTEGER, toSolarSystemID INTEGER);
		INSERT INTO mapSolarSystems VALUES
			(30000300, 'Tuuziya', 0, 0, 0, 60, 0, 0),
			(30000301, 'Vaere', 9, 0, 0, 60, 0, 0);
		INSERT INTO stargates VALUES (30000300, 30000301);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	sm, lerr := Load(path)
	require.Nil(t, lerr)

	assert.Equal(t, SchemaE6C3, sm.Schema())
	assert.True(t, sm.HasGate(30000300, 30000301))
}
