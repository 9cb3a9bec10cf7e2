// Package freshness compares a spatial index's embedded dataset fingerprint
// to the currently-loaded dataset (spec §4.8), generalized from the
// teacher's own SDE freshness workflow (internal/sde/sde.go: download
// checksum, compare against stored hash) into a pure, offline, two-file
// comparison.
package freshness

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/evefrontier/routecore/pkg/coreerr"
	"github.com/evefrontier/routecore/pkg/spatialindex"
)

// State is the closed set of freshness outcomes (spec §4.8).
type State string

const (
	StateFresh          State = "fresh"
	StateStale          State = "stale"
	StateLegacyFormat   State = "legacy_format"
	StateMissing        State = "missing"
	StateDatasetMissing State = "dataset_missing"
	StateError          State = "error"
)

// ExitCode maps each State to its CLI/CI exit code (spec §4.8).
func (s State) ExitCode() int {
	switch s {
	case StateFresh:
		return 0
	case StateStale:
		return 1
	case StateMissing:
		return 2
	case StateLegacyFormat:
		return 3
	case StateDatasetMissing:
		return 4
	default:
		return 5
	}
}

// Result is the structured payload returned by Verify.
type Result struct {
	State State

	ExpectedChecksum string // hex, v2 index's embedded checksum
	ActualChecksum   string // hex, current dataset checksum
	ExpectedTag      string
	ActualTag        string

	Path    string // path that was missing/corrupt, for Missing/Error states
	Message string
}

// IsFresh is the single boolean surface for CLI/CI callers (spec §4.8).
func (r Result) IsFresh() bool { return r.State == StateFresh }

// ChecksumFile streams a SHA-256 over a file's full bytes in 8 KiB chunks
// (spec §4.3 "Dataset checksum").
func ChecksumFile(path string) ([32]byte, *coreerr.Error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, coreerr.IoError(path, err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 8*1024)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return [32]byte{}, coreerr.IoError(path, err)
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

// Verify compares indexPath's embedded dataset fingerprint against
// datasetPath's current checksum (spec §4.8).
func Verify(indexPath, datasetPath string) Result {
	if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
		return Result{State: StateDatasetMissing, Path: datasetPath}
	}

	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		return Result{State: StateMissing, Path: indexPath}
	}

	idx, ierr := spatialindex.Load(indexPath)
	if ierr != nil {
		return Result{State: StateError, Path: indexPath, Message: ierr.Error()}
	}

	meta := idx.SourceMetadata()
	if meta == nil {
		return Result{State: StateLegacyFormat, Path: indexPath, Message: "index has no embedded metadata (v1 format)"}
	}

	actual, cerr := ChecksumFile(datasetPath)
	if cerr != nil {
		return Result{State: StateError, Path: datasetPath, Message: cerr.Error()}
	}

	expectedHex := hex.EncodeToString(meta.Checksum[:])
	actualHex := hex.EncodeToString(actual[:])

	if expectedHex == actualHex {
		return Result{State: StateFresh, ExpectedChecksum: expectedHex, ActualChecksum: actualHex, ExpectedTag: meta.ReleaseTag, ActualTag: meta.ReleaseTag}
	}
	return Result{
		State:            StateStale,
		ExpectedChecksum: expectedHex,
		ActualChecksum:   actualHex,
		ExpectedTag:      meta.ReleaseTag,
		Message:          "rebuild the spatial index: dataset checksum no longer matches the index's embedded fingerprint",
	}
}
