package champ

import (
	"fmt"
	"math/bits"
)

const (
	hashWidth     uint32 = 32   // we consume full 32-bit hash codes
	partitionBits uint32 = 5    // number of hash bits consumed per trie level
	partitionMask uint32 = 0x1f // bit pattern with trailing 1s of length partitionBits
	maxDepth      int    = 7    // ⌈hashWidth / partitionBits⌉
)

// maskOf extracts the 5-bit partition of a hash code at a given shift,
// selecting one of 32 slots of a trie level.
func maskOf(hash, shift uint32) uint32 {
	return (hash >> shift) & partitionMask
}

func bitposOf(mask uint32) uint32 {
	return 1 << mask
}

// indexOf compresses a bit position into an index into the payload
// (or sub-node) slice of a node: the number of occupied slots below bitpos.
func indexOf(bitmap, bitpos uint32) int {
	return bits.OnesCount32(bitmap & (bitpos - 1))
}

// --- Edit tokens -----------------------------------------------------------

// A nonce is a unique identity marking nodes as owned by one transient set.
// Nodes carrying the live nonce of a transient may be mutated in place by
// that transient; every other holder gets a copy.
type nonce *byte

func newNonce() nonce {
	return new(byte)
}

func allowedToEdit(x, y nonce) bool {
	return x != nil && x == y
}

// --- Size classes ----------------------------------------------------------

// sizeClass classifies a node's payload count, deciding collapse/inline
// behaviour after a removal.
type sizeClass int8

const (
	sizeEmpty sizeClass = iota
	sizeOne
	sizeMany
)

// --- Slice helpers ---------------------------------------------------------

// Copy-on-write primitives for the nodes' backing slices. They always return
// fresh slices: sharing a backing array between nodes would let a transient's
// in-place mutation of one node leak into another.

func sliceInsert[T any](src []T, at int, v T) []T {
	dst := make([]T, len(src)+1)
	copy(dst, src[:at])
	dst[at] = v
	copy(dst[at+1:], src[at:])
	return dst
}

func sliceRemove[T any](src []T, at int) []T {
	dst := make([]T, len(src)-1)
	copy(dst, src[:at])
	copy(dst[at:], src[at+1:])
	return dst
}

func sliceSet[T any](src []T, at int, v T) []T {
	dst := make([]T, len(src))
	copy(dst, src)
	dst[at] = v
	return dst
}

// ---------------------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("persistent.champ: "+msg, msgargs...)
		panic(msg)
	}
}
