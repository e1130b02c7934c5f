package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"voxcore/internal/world"
)

// Shared coders. EncodeAll and DecodeAll are safe for concurrent use.
var (
	blobEncoder *zstd.Encoder
	blobDecoder *zstd.Decoder
)

func init() {
	var err error
	blobEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("storage: zstd encoder: %v", err))
	}
	blobDecoder, err = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		panic(fmt.Sprintf("storage: zstd decoder: %v", err))
	}
}

// EncodeGrid compresses the raw grid bytes into a chunk blob.
func EncodeGrid(g *world.Grid) ([]byte, error) {
	raw, err := g.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return blobEncoder.EncodeAll(raw, make([]byte, 0, 256)), nil
}

// DecodeGrid reverses EncodeGrid. Anything that does not decode to exactly one grid
// is ErrCorruptChunk.
func DecodeGrid(blob []byte) (*world.Grid, error) {
	raw, err := blobDecoder.DecodeAll(blob, make([]byte, 0, world.ChunkVolume))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
	}
	if len(raw) != world.ChunkVolume {
		return nil, fmt.Errorf("%w: decoded %d bytes, want %d", ErrCorruptChunk, len(raw), world.ChunkVolume)
	}
	g := new(world.Grid)
	if err := g.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptChunk, err)
	}
	return g, nil
}
