package graph

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/evefrontier/routecore/pkg/spatialindex"
	"github.com/evefrontier/routecore/pkg/starmap"
)

// newFixtureDataset creates a tiny legacy-schema SQLite dataset on disk and
// loads it through the real starmap.Load path, so graph tests exercise the
// same construction the library ships with instead of hand-built structs.
func newFixtureDataset(t *testing.T) *starmap.Starmap {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE solarSystems (id INTEGER, name TEXT, x REAL, y REAL, z REAL, temperature REAL, planets INTEGER, moons INTEGER);
		CREATE TABLE gates (from_id INTEGER, to_id INTEGER);
		INSERT INTO solarSystems VALUES
			(30000100, 'Nod', 0, 0, 0, 50, 1, 2),
			(30000101, 'Brana', 30, 0, 0, 120, 0, 0),
			(30000102, 'Ardua', 15, 5, 0, 90, 2, 1);
		INSERT INTO gates VALUES (30000100, 30000102), (30000102, 30000101);
	`)
	require.NoError(t, err)

	sm, lerr := starmap.Load(path)
	require.Nil(t, lerr)
	return sm
}

func TestGateOnlyNeighbours(t *testing.T) {
	sm := newFixtureDataset(t)
	b := New(GateOnly, sm, nil, 0)

	edges := b.Neighbours(30_000_102)
	require.Len(t, edges, 2)
	for _, e := range edges {
		require.Equal(t, EdgeGate, e.Kind)
		require.Equal(t, 0.0, e.DistanceLy)
	}
}

func TestSpatialOnlyRespectsRadius(t *testing.T) {
	sm := newFixtureDataset(t)
	idx := spatialindex.Build(sm, starmap.DatasetMetadata{})
	b := New(SpatialOnly, sm, idx, 20)

	edges := b.Neighbours(30_000_100)
	for _, e := range edges {
		require.Equal(t, EdgeJump, e.Kind)
		require.LessOrEqual(t, e.DistanceLy, 20.0+1e-9)
		require.NotEqual(t, starmap.SystemID(30_000_100), e.To)
	}
}

func TestHybridPrefersGateOverSpatialDuplicate(t *testing.T) {
	sm := newFixtureDataset(t)
	idx := spatialindex.Build(sm, starmap.DatasetMetadata{})
	b := New(Hybrid, sm, idx, 50)

	edges := b.Neighbours(30_000_100)
	kindTo := make(map[starmap.SystemID]EdgeKind)
	for _, e := range edges {
		if existing, ok := kindTo[e.To]; ok {
			require.Failf(t, "duplicate destination", "got %v and %v to %d", existing, e.Kind, e.To)
		}
		kindTo[e.To] = e.Kind
	}
	require.Equal(t, EdgeGate, kindTo[30_000_102])
}

func TestBuilderWithNilIndexReturnsNoSpatialEdges(t *testing.T) {
	sm := newFixtureDataset(t)
	b := New(SpatialOnly, sm, nil, 50)
	require.Empty(t, b.Neighbours(30_000_100))
}
