package compress

// zstdCodec selects a Zstandard implementation at build time: the cgo
// binding when cgo is available, the pure-Go implementation otherwise. Both
// produce standard zstd frames and can read each other's output.
type zstdCodec struct{}
