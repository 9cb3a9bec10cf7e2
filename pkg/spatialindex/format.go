package spatialindex

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/evefrontier/routecore/pkg/coreerr"
	"github.com/evefrontier/routecore/pkg/starmap"
)

const (
	magic           = "EFSI"
	headerLen       = 16
	footerLen       = 32
	flagHasMetadata = 1 << 1
	currentVersion  = 2
)

// serializedPoint is the wire shape of one KD-tree point. Serialization
// uses the stdlib's own self-describing binary encoding (encoding/gob): no
// third-party serialization library in the retrieved corpus fits a small,
// internal, versioned node list better than gob already does (see
// DESIGN.md).
type serializedPoint struct {
	ID      uint32
	X, Y, Z float64
	MinTemp float64
}

// Save writes the index as a v2 artifact: header, optional metadata
// section, zstd-compressed body, and a SHA-256 footer covering the
// compressed body bytes exactly as written (spec §4.3). The write goes to
// a temporary file in the same directory and is atomically renamed into
// place on success, so a partial write is never observable at path.
func (idx *Index) Save(path string) *coreerr.Error {
	points := flatten(idx.root)
	wire := make([]serializedPoint, len(points))
	for i, p := range points {
		wire[i] = serializedPoint{ID: uint32(p.id), X: p.pos.X, Y: p.pos.Y, Z: p.pos.Z, MinTemp: p.minTemp}
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(wire); err != nil {
		return coreerr.IoError(path, err)
	}

	var compressed bytes.Buffer
	zw, err := zstd.NewWriter(&compressed)
	if err != nil {
		return coreerr.IoError(path, err)
	}
	if _, err := zw.Write(raw.Bytes()); err != nil {
		zw.Close()
		return coreerr.IoError(path, err)
	}
	if err := zw.Close(); err != nil {
		return coreerr.IoError(path, err)
	}

	footer := sha256.Sum256(compressed.Bytes())

	var out bytes.Buffer
	header := make([]byte, headerLen)
	copy(header[0:4], magic)
	header[4] = currentVersion
	header[5] = flagHasMetadata
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(points)))

	var metadata bytes.Buffer
	metadata.Write(idx.sourceMetadata.Checksum[:])
	tag := idx.sourceMetadata.ReleaseTag
	if len(tag) > 64 {
		tag = tag[:64]
	}
	metadata.WriteByte(byte(len(tag)))
	metadata.WriteString(tag)
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(idx.sourceMetadata.BuildTimestampUnix))
	metadata.Write(ts[:])

	binary.LittleEndian.PutUint16(header[10:12], uint16(metadata.Len()))

	out.Write(header)
	out.Write(metadata.Bytes())
	out.Write(compressed.Bytes())
	out.Write(footer[:])

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".spatialindex-*.tmp")
	if err != nil {
		return coreerr.IoError(path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(out.Bytes()); err != nil {
		tmp.Close()
		return coreerr.IoError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return coreerr.IoError(path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return coreerr.IoError(path, err)
	}
	return nil
}

// Load reads a v1 or v2 artifact from path, verifying magic, version, and
// (for both versions) the footer SHA-256 over the compressed body. v1 files load
// successfully but expose SourceMetadata() == nil (spec §4.3).
func Load(path string) (*Index, *coreerr.Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, coreerr.IndexMissing(path)
		}
		return nil, coreerr.IoError(path, err)
	}

	if len(data) < headerLen+footerLen {
		return nil, coreerr.IndexCorrupt(path, "file too short for header+footer")
	}
	if string(data[0:4]) != magic {
		return nil, coreerr.IndexCorrupt(path, "bad magic")
	}
	version := data[4]
	if version != 1 && version != 2 {
		return nil, coreerr.IndexCorrupt(path, "unsupported version")
	}
	flags := data[5]
	nodeCount := binary.LittleEndian.Uint32(data[6:10])
	metaLen := binary.LittleEndian.Uint16(data[10:12])

	offset := headerLen
	var meta *starmap.DatasetMetadata
	hasMetadata := version == 2 && flags&flagHasMetadata != 0
	if hasMetadata {
		if len(data) < offset+int(metaLen) {
			return nil, coreerr.IndexCorrupt(path, "metadata section truncated")
		}
		section := data[offset : offset+int(metaLen)]
		offset += int(metaLen)

		if len(section) < 32+1 {
			return nil, coreerr.IndexCorrupt(path, "metadata section too short")
		}
		var m starmap.DatasetMetadata
		copy(m.Checksum[:], section[0:32])
		tagLen := int(section[32])
		if len(section) < 33+tagLen+8 {
			return nil, coreerr.IndexCorrupt(path, "metadata tag/timestamp truncated")
		}
		m.ReleaseTag = string(section[33 : 33+tagLen])
		m.BuildTimestampUnix = int64(binary.LittleEndian.Uint64(section[33+tagLen : 33+tagLen+8]))
		meta = &m
	}

	if len(data) < offset+footerLen {
		return nil, coreerr.IndexCorrupt(path, "missing footer")
	}
	body := data[offset : len(data)-footerLen]
	footer := data[len(data)-footerLen:]

	computed := sha256.Sum256(body)
	if !bytes.Equal(computed[:], footer) {
		return nil, coreerr.IndexCorrupt(path, "footer checksum mismatch")
	}

	zr, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, coreerr.IndexCorrupt(path, "zstd init: "+err.Error())
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, coreerr.IndexCorrupt(path, "zstd decode: "+err.Error())
	}

	var wire []serializedPoint
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&wire); err != nil {
		return nil, coreerr.IndexCorrupt(path, "node decode: "+err.Error())
	}
	if uint32(len(wire)) != nodeCount {
		return nil, coreerr.IndexCorrupt(path, "node count mismatch")
	}

	points := make([]point, len(wire))
	for i, w := range wire {
		points[i] = point{
			id:      starmap.SystemID(w.ID),
			pos:     starmap.Position{X: w.X, Y: w.Y, Z: w.Z},
			minTemp: w.MinTemp,
		}
	}

	return &Index{
		root:           buildTree(points, 0),
		count:          len(points),
		sourceMetadata: metaOrZero(meta),
		hasMetadata:    meta != nil,
	}, nil
}

func metaOrZero(m *starmap.DatasetMetadata) starmap.DatasetMetadata {
	if m == nil {
		return starmap.DatasetMetadata{}
	}
	return *m
}
