package compress

import "fmt"

// Type selects a transcript compression codec.
type Type uint8

const (
	// TypeNone stores transcripts uncompressed.
	TypeNone Type = iota + 1
	// TypeZstd uses Zstandard: best ratio, the archival default.
	TypeZstd
	// TypeS2 uses S2: very fast, moderate ratio.
	TypeS2
	// TypeLZ4 uses LZ4 block compression: fast with a small footprint.
	TypeLZ4
	// TypeGzip uses gzip, for transcripts that must stay readable by
	// ubiquitous external tooling.
	TypeGzip
)

// String returns the codec name.
func (t Type) String() string {
	switch t {
	case TypeNone:
		return "none"
	case TypeZstd:
		return "zstd"
	case TypeS2:
		return "s2"
	case TypeLZ4:
		return "lz4"
	case TypeGzip:
		return "gzip"
	default:
		return "unknown"
	}
}

// Codec compresses and decompresses one transcript payload as a block.
//
// Returned slices are newly allocated and owned by the caller; inputs are
// never modified. Implementations must be safe for concurrent use.
type Codec interface {
	// Compress compresses a complete transcript payload.
	Compress(data []byte) ([]byte, error)

	// Decompress restores a payload previously compressed by the same
	// codec. Corrupted or foreign data returns an error.
	Decompress(data []byte) ([]byte, error)
}

// New returns the codec for the given type.
func New(t Type) (Codec, error) {
	switch t {
	case TypeNone:
		return noopCodec{}, nil
	case TypeZstd:
		return zstdCodec{}, nil
	case TypeS2:
		return s2Codec{}, nil
	case TypeLZ4:
		return lz4Codec{}, nil
	case TypeGzip:
		return gzipCodec{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression type: %s", t)
	}
}
