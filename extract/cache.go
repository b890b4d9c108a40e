package extract

import "github.com/JuggernautLabs/semantic-query/internal/hash"

// missCacheMax bounds the cache; past it the oldest entries are not tracked,
// they are simply all forgotten. A stream that produces this many distinct
// non-matching structures is pathological and correctness never depends on
// the cache.
const missCacheMax = 4096

// MissCache remembers spans that already failed to decode as the target
// type. The event-protocol aggregator rescans its whole accumulation buffer
// on every token, so without it each closed non-matching structure would be
// re-attempted once per subsequent token. Identical bytes always fail
// identically, which is what makes the negative cache sound.
//
// A MissCache belongs to a single stream and is not safe for concurrent use.
type MissCache struct {
	misses map[uint64]struct{}
}

// NewMissCache creates an empty cache.
func NewMissCache() *MissCache {
	return &MissCache{misses: make(map[uint64]struct{})}
}

// Seen reports whether the span previously failed to decode.
func (c *MissCache) Seen(span string) bool {
	_, ok := c.misses[hash.Span(span)]

	return ok
}

// Add records a span that failed to decode.
func (c *MissCache) Add(span string) {
	if len(c.misses) >= missCacheMax {
		c.misses = make(map[uint64]struct{})
	}
	c.misses[hash.Span(span)] = struct{}{}
}

// Len returns the number of recorded misses.
func (c *MissCache) Len() int {
	return len(c.misses)
}
