package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"errors"
	"fmt"
	"testing"

	"github.com/hupe1980/simili/blobstore"
	"github.com/hupe1980/simili/catalog"
	"github.com/hupe1980/simili/codec"
	"github.com/hupe1980/simili/features"
	"github.com/hupe1980/simili/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tracks := catalog.MockTracks()

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		for _, comp := range []codec.Compression{codec.CompressionNone, codec.CompressionLZ4, codec.CompressionZSTD} {
			t.Run(fmt.Sprintf("%s/%s", c.Name(), comp), func(t *testing.T) {
				data, err := Encode(tracks, func(o *Options) {
					o.Codec = c
					o.Compression = comp
				})
				require.NoError(t, err)

				got, err := Decode(data)
				require.NoError(t, err)
				require.Len(t, got, len(tracks))
				for i := range tracks {
					assert.Equal(t, tracks[i].ID, got[i].ID)
					assert.Equal(t, tracks[i].Title, got[i].Title)
					assert.Equal(t, tracks[i].Features, got[i].Features)
					assert.InDeltaSlice(t, features.Vectorize(tracks[i].Features), got[i].Vector, 1e-12)
				}
			})
		}
	}
}

func TestEncode_DoesNotMutateInput(t *testing.T) {
	tracks := catalog.MockTracks()
	_, err := Encode(tracks)
	require.NoError(t, err)
	assert.Nil(t, tracks[0].Vector)
}

// sealed appends a valid checksum to a hand-built snapshot.
func sealed(s string) []byte {
	return binary.LittleEndian.AppendUint32([]byte(s), crc32.Checksum([]byte(s), crc32.MakeTable(crc32.Castagnoli)))
}

func corrupt(data []byte, i int) []byte {
	out := bytes.Clone(data)
	out[i] ^= 0xff
	return out
}

func TestDecode_Errors(t *testing.T) {
	valid, err := Encode([]model.Track{{ID: "1"}})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"Empty", nil, ErrInvalidSnapshot},
		{"BadMagic", []byte("NOPE\x01\x00\x04json{}"), ErrInvalidSnapshot},
		{"Version", append([]byte("SIMI\x07"), valid[5:]...), ErrUnsupportedVersion},
		{"UnknownCodec", sealed("SIMI\x01\x00\x07msgpack"), ErrInvalidSnapshot},
		{"TruncatedHeader", sealed("SIMI\x01\x00\x09go"), ErrInvalidSnapshot},
		{"TruncatedFrame", valid[:len(valid)-3], ErrInvalidSnapshot},
		{"Corrupted", corrupt(valid, len(valid)/2), ErrChecksumMismatch},
		{"CorruptedChecksum", corrupt(valid, len(valid)-1), ErrChecksumMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.True(t, errors.Is(err, tt.err), "got %v", err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	n, err := Export(ctx, catalog.NewMock(), store, "catalogs/mock.snap", func(o *Options) {
		o.Compression = codec.CompressionZSTD
	})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	cat, err := Load(ctx, store, "catalogs/mock.snap")
	require.NoError(t, err)
	assert.Equal(t, 5, cat.Len())

	tr, err := cat.Get(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, "Blinding Lights", tr.Title)

	_, err = Load(ctx, store, "missing.snap")
	assert.True(t, errors.Is(err, blobstore.ErrNotFound))
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
