package spatialindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evefrontier/routecore/pkg/starmap"
)

func samplePoints() []point {
	return []point{
		{id: 1, pos: starmap.Position{X: 0, Y: 0, Z: 0}, minTemp: 50},
		{id: 2, pos: starmap.Position{X: 10, Y: 0, Z: 0}, minTemp: 200},
		{id: 3, pos: starmap.Position{X: 5, Y: 5, Z: 0}, minTemp: 90},
		{id: 4, pos: starmap.Position{X: -20, Y: 0, Z: 0}, minTemp: 10},
	}
}

func buildSampleIndex() *Index {
	pts := samplePoints()
	return &Index{root: buildTree(pts, 0), count: len(pts), hasMetadata: false}
}

func TestWithinRadiusFindsExpectedNeighbours(t *testing.T) {
	idx := buildSampleIndex()
	results := idx.WithinRadius(starmap.Position{X: 0, Y: 0, Z: 0}, 8, nil)
	ids := make(map[starmap.SystemID]bool)
	for _, r := range results {
		ids[r.ID] = true
	}
	assert.True(t, ids[1])
	assert.True(t, ids[3])
	assert.False(t, ids[2])
	assert.False(t, ids[4])
}

func TestWithinRadiusTemperaturePrune(t *testing.T) {
	idx := buildSampleIndex()
	limit := 100.0
	results := idx.WithinRadius(starmap.Position{X: 0, Y: 0, Z: 0}, 30, &limit)
	for _, r := range results {
		assert.NotEqual(t, starmap.SystemID(2), r.ID)
	}
}

func TestKNearestReturnsClosestFirst(t *testing.T) {
	idx := buildSampleIndex()
	results := idx.KNearest(starmap.Position{X: 0, Y: 0, Z: 0}, 2, nil)
	require.Len(t, results, 2)
	assert.Equal(t, starmap.SystemID(1), results[0].ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	pts := samplePoints()
	idx := &Index{
		root:           buildTree(pts, 0),
		count:          len(pts),
		sourceMetadata: starmap.DatasetMetadata{Checksum: [32]byte{9, 9, 9}, ReleaseTag: "rel", BuildTimestampUnix: 42},
		hasMetadata:    true,
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "index.bin")
	require.Nil(t, idx.Save(path))

	loaded, lerr := Load(path)
	require.Nil(t, lerr)
	assert.True(t, idx.Equal(loaded))

	a := idx.WithinRadius(starmap.Position{}, 100, nil)
	b := loaded.WithinRadius(starmap.Position{}, 100, nil)
	assert.ElementsMatch(t, idsOf(a), idsOf(b))
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o644))
	_, err := Load(path)
	require.NotNil(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"))
	require.NotNil(t, err)
}

func idsOf(ns []Neighbour) []starmap.SystemID {
	out := make([]starmap.SystemID, len(ns))
	for i, n := range ns {
		out[i] = n.ID
	}
	return out
}
