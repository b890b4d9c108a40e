// Package compress provides the block codecs used by the transcript
// package to shrink recorded stream transcripts.
//
// Transcripts are model output text: highly repetitive JSON and prose, which
// compresses well under every codec here. Zstd gives the best ratio for
// archived transcripts, S2 and LZ4 favor speed when transcripts are written
// on the hot path, and None is for debugging recorded streams with plain
// tools.
package compress
