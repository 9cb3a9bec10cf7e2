package freshness

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"encoding/gob"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evefrontier/routecore/pkg/spatialindex"
	"github.com/evefrontier/routecore/pkg/starmap"
)

func newFixtureDataset(t *testing.T, path string) *starmap.Starmap {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE solarSystems (id INTEGER, name TEXT, x REAL, y REAL, z REAL, temperature REAL, planets INTEGER, moons INTEGER);
		CREATE TABLE gates (from_id INTEGER, to_id INTEGER);
		INSERT INTO solarSystems VALUES (1, 'Alpha', 0, 0, 0, 50, 1, 0);
	`)
	require.NoError(t, err)

	sm, lerr := starmap.Load(path)
	require.Nil(t, lerr)
	return sm
}

// TestFreshnessCycle is the spec's scenario 6: build an index from a
// fixture dataset (Fresh), then flip one byte of the dataset file and
// verify the result becomes Stale with differing checksums.
func TestFreshnessCycle(t *testing.T) {
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "dataset.db")
	indexPath := filepath.Join(dir, "index.bin")

	sm := newFixtureDataset(t, datasetPath)

	checksum, cerr := ChecksumFile(datasetPath)
	require.Nil(t, cerr)
	meta := starmap.DatasetMetadata{Checksum: checksum, ReleaseTag: "v1.0.0"}

	idx := spatialindex.Build(sm, meta)
	require.Nil(t, idx.Save(indexPath))

	result := Verify(indexPath, datasetPath)
	assert.Equal(t, StateFresh, result.State)
	assert.True(t, result.IsFresh())
	assert.Equal(t, 0, result.State.ExitCode())

	flipOneByte(t, datasetPath)

	result = Verify(indexPath, datasetPath)
	assert.Equal(t, StateStale, result.State)
	assert.False(t, result.IsFresh())
	assert.NotEqual(t, result.ExpectedChecksum, result.ActualChecksum)
	assert.Equal(t, 1, result.State.ExitCode())
}

func TestMissingIndexFile(t *testing.T) {
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "dataset.db")
	newFixtureDataset(t, datasetPath)

	result := Verify(filepath.Join(dir, "missing.bin"), datasetPath)
	assert.Equal(t, StateMissing, result.State)
	assert.Equal(t, 2, result.State.ExitCode())
}

func TestMissingDatasetFile(t *testing.T) {
	dir := t.TempDir()
	result := Verify(filepath.Join(dir, "index.bin"), filepath.Join(dir, "missing.db"))
	assert.Equal(t, StateDatasetMissing, result.State)
	assert.Equal(t, 4, result.State.ExitCode())
}

func TestLegacyFormatWhenIndexHasNoMetadata(t *testing.T) {
	dir := t.TempDir()
	datasetPath := filepath.Join(dir, "dataset.db")
	indexPath := filepath.Join(dir, "index.bin")
	newFixtureDataset(t, datasetPath)

	writeV1IndexFile(t, indexPath)

	result := Verify(indexPath, datasetPath)
	assert.Equal(t, StateLegacyFormat, result.State)
	assert.Equal(t, 3, result.State.ExitCode())
}

// writeV1IndexFile hand-builds a minimal valid v1 spatial index artifact:
// header (no metadata flag), an empty zstd-compressed gob-encoded point
// list, and a SHA-256 footer over the compressed body — the pre-metadata
// format Load() must still accept (spec §4.3: "v1 readable, v2 written").
func writeV1IndexFile(t *testing.T, path string) {
	t.Helper()

	var raw bytes.Buffer
	require.NoError(t, gob.NewEncoder(&raw).Encode([]struct {
		ID      uint32
		X, Y, Z float64
		MinTemp float64
	}{}))

	var compressed bytes.Buffer
	zw, err := zstd.NewWriter(&compressed)
	require.NoError(t, err)
	_, err = zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	footer := sha256.Sum256(compressed.Bytes())

	header := make([]byte, 16)
	copy(header[0:4], "EFSI")
	header[4] = 1 // version 1
	header[5] = 0 // no metadata flag
	binary.LittleEndian.PutUint32(header[6:10], 0)
	binary.LittleEndian.PutUint16(header[10:12], 0)

	var out bytes.Buffer
	out.Write(header)
	out.Write(compressed.Bytes())
	out.Write(footer[:])

	require.NoError(t, os.WriteFile(path, out.Bytes(), 0o644))
}

func flipOneByte(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	data[0] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))
}
