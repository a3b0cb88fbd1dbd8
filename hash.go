package champ

import (
	"fmt"
	"hash/maphash"
)

// Hasher computes a full 32-bit hash code for an element. Sets that are to
// be combined with each other must have been built with the same Hasher.
type Hasher[E comparable] func(E) uint32

// seed makes the default hash codes stable within one process only.
var seed = maphash.MakeSeed()

// defaultHasher picks a hash function by inspecting E's zero value.
// Strings and byte-ish cases go through hash/maphash, fixed-size integers
// through an avalanche mixer. Everything else is hashed by way of its
// fmt representation, which is slow but total.
func defaultHasher[E comparable]() Hasher[E] {
	var zero E
	switch any(zero).(type) {
	case string:
		return func(e E) uint32 {
			var h maphash.Hash
			h.SetSeed(seed)
			h.WriteString(any(e).(string))
			return uint32(h.Sum64())
		}
	case int:
		return func(e E) uint32 { return mix32(uint32(any(e).(int))) }
	case int32:
		return func(e E) uint32 { return mix32(uint32(any(e).(int32))) }
	case int64:
		return func(e E) uint32 {
			x := uint64(any(e).(int64))
			return mix32(uint32(x) ^ uint32(x>>32))
		}
	case uint:
		return func(e E) uint32 { return mix32(uint32(any(e).(uint))) }
	case uint32:
		return func(e E) uint32 { return mix32(any(e).(uint32)) }
	case uint64:
		return func(e E) uint32 {
			x := any(e).(uint64)
			return mix32(uint32(x) ^ uint32(x>>32))
		}
	default:
		return func(e E) uint32 {
			var h maphash.Hash
			h.SetSeed(seed)
			fmt.Fprintf(&h, "%v", e)
			return uint32(h.Sum64())
		}
	}
}

// mix32 is the 32-bit finalizer of MurmurHash3. Small integers would
// otherwise populate only the lowest trie level.
func mix32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x85ebca6b
	x ^= x >> 13
	x *= 0xc2b2ae35
	x ^= x >> 16
	return x
}
