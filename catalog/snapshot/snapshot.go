// Package snapshot stores whole catalogs as single blobs.
//
// A snapshot is self-describing:
//
//	"SIMI" | version u8 | compression u8 | len(codec) u8 | codec name | frame | crc32c u32
//
// The frame is the codec-encoded track list wrapped by codec.Compress. The
// trailing CRC32-Castagnoli (little endian) covers every byte before it.
// Feature vectors are precomputed when the snapshot is written, so loading a
// snapshot does not vectorize again.
package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"github.com/hupe1980/simili/blobstore"
	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/codec"
	"github.com/hupe1980/simili/model"
)

const (
	magic        = "SIMI"
	version      = 1
	checksumSize = 4
)

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

var (
	// ErrInvalidSnapshot is returned for blobs that are not snapshots.
	ErrInvalidSnapshot = errors.New("invalid catalog snapshot")

	// ErrUnsupportedVersion is returned for snapshots written by a newer format.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")

	// ErrChecksumMismatch is returned for corrupted snapshots. It wraps
	// ErrInvalidSnapshot.
	ErrChecksumMismatch = fmt.Errorf("%w: checksum mismatch", ErrInvalidSnapshot)
)

// Options configures Encode and Save.
type Options struct {
	// Codec encodes the track list. Defaults to codec.Default.
	Codec codec.Codec
	// Compression of the encoded track list. Defaults to none.
	Compression codec.Compression
}

type document struct {
	Tracks []model.Track `json:"tracks"`
}

// Encode serializes tracks into a snapshot.
func Encode(tracks []model.Track, optFns ...func(*Options)) ([]byte, error) {
	o := Options{Codec: codec.Default}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	name := o.Codec.Name()
	if len(name) == 0 || len(name) > 255 {
		return nil, fmt.Errorf("invalid codec name %q", name)
	}

	doc := document{Tracks: make([]model.Track, len(tracks))}
	for i, t := range tracks {
		t.Vector = t.FeatureVector()
		doc.Tracks[i] = t
	}

	body, err := o.Codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tracks: %w", err)
	}
	frame, err := codec.Compress(body, o.Compression)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(magic) + 3 + len(name) + len(frame) + checksumSize)
	buf.WriteString(magic)
	buf.WriteByte(version)
	buf.WriteByte(byte(o.Compression))
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.Write(frame)

	var sum [checksumSize]byte
	binary.LittleEndian.PutUint32(sum[:], crc32.Checksum(buf.Bytes(), crc32cTable))
	buf.Write(sum[:])
	return buf.Bytes(), nil
}

// Decode parses a snapshot produced by Encode.
func Decode(data []byte) ([]model.Track, error) {
	if len(data) < len(magic)+3+checksumSize || string(data[:len(magic)]) != magic {
		return nil, ErrInvalidSnapshot
	}
	if v := data[len(magic)]; v != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	payload, sum := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if crc32.Checksum(payload, crc32cTable) != binary.LittleEndian.Uint32(sum) {
		return nil, ErrChecksumMismatch
	}
	data = payload[len(magic):]
	compression := codec.Compression(data[1])
	nameLen := int(data[2])
	data = data[3:]
	if len(data) < nameLen {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidSnapshot)
	}
	c, ok := codec.ByName(string(data[:nameLen]))
	if !ok {
		return nil, fmt.Errorf("%w: unknown codec %q", ErrInvalidSnapshot, data[:nameLen])
	}

	body, err := codec.Decompress(data[nameLen:], compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	var doc document
	if err := c.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if doc.Tracks == nil {
		doc.Tracks = []model.Track{}
	}
	return doc.Tracks, nil
}

// Save writes tracks to store under name.
func Save(ctx context.Context, store blobstore.Store, name string, tracks []model.Track, optFns ...func(*Options)) error {
	data, err := Encode(tracks, optFns...)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	return nil
}

// Export snapshots every track of src. It returns the number of tracks written.
func Export(ctx context.Context, src catalog.Source, store blobstore.Store, name string, optFns ...func(*Options)) (int, error) {
	tracks, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list catalog: %w", err)
	}
	if err := Save(ctx, store, name, tracks, optFns...); err != nil {
		return 0, err
	}
	return len(tracks), nil
}

// Load reads a snapshot into an in-memory catalog.
func Load(ctx context.Context, store blobstore.Store, name string) (*catalog.Memory, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	tracks, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return catalog.NewMemory(tracks...), nil
}
