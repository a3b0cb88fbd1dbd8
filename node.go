package champ

import (
	"fmt"
	"math/bits"
	"strings"
)

// change is a side-channel record threaded through recursive node operations,
// reporting whether a single-element operation actually mutated the trie.
type change struct {
	modified bool
}

// bulkChange accumulates aggregate size/hash deltas during a bulk union.
// hashDelta wraps around, matching the wrapping sum in Set.hashVal.
type bulkChange struct {
	sizeDelta int
	hashDelta uint32
}

// node is one recursive unit of the trie. Two variants exist: *bitmapNode
// (internal/mixed node) and *collisionNode (bucket for elements whose full
// hash codes collide).
type node[E comparable] interface {
	contains(key E, keyHash, shift uint32) bool
	updated(edit nonce, key E, keyHash, shift uint32, h Hasher[E], ch *change) node[E]
	removed(edit nonce, key E, keyHash, shift uint32, ch *change) node[E]
	unionWith(other node[E], shift uint32, h Hasher[E], bulk *bulkChange) node[E]
	hasNodes() bool
	hasPayload() bool
	nodeArity() int
	payloadArity() int
	getKey(index int) E
	getNode(index int) node[E]
	sizeClass() sizeClass
	equivalent(other node[E]) bool
}

// --- Bitmap-indexed node ---------------------------------------------------

// bitmapNode represents one trie level, dispatching on a 5-bit partition of
// the hash code. dataMap and nodeMap are disjoint masks over the same 32
// slots: a set bit in dataMap locates an inline element in keys, a set bit in
// nodeMap locates a sub-node in nodes. Both slices are ordered by ascending
// bit position and indexed by popcount of the respective bitmap.
type bitmapNode[E comparable] struct {
	edit    nonce
	nodeMap uint32
	dataMap uint32
	keys    []E
	nodes   []node[E]
}

func emptyNode[E comparable]() *bitmapNode[E] {
	return &bitmapNode[E]{}
}

func (n *bitmapNode[E]) contains(key E, keyHash, shift uint32) bool {
	bitpos := bitposOf(maskOf(keyHash, shift))
	if n.dataMap&bitpos != 0 {
		return n.keys[indexOf(n.dataMap, bitpos)] == key
	}
	if n.nodeMap&bitpos != 0 {
		return n.nodes[indexOf(n.nodeMap, bitpos)].contains(key, keyHash, shift+partitionBits)
	}
	return false
}

func (n *bitmapNode[E]) updated(edit nonce, key E, keyHash, shift uint32, h Hasher[E],
	ch *change) node[E] {
	//
	bitpos := bitposOf(maskOf(keyHash, shift))
	switch {
	case n.dataMap&bitpos != 0: // inline element occupies the slot
		inx := indexOf(n.dataMap, bitpos)
		current := n.keys[inx]
		if current == key {
			return n
		}
		subNode := mergeKeyPair(edit, current, h(current), key, keyHash, shift+partitionBits)
		ch.modified = true
		return n.migrateInlineToNode(edit, bitpos, subNode)
	case n.nodeMap&bitpos != 0: // sub-node occupies the slot
		subNode := n.nodes[indexOf(n.nodeMap, bitpos)]
		subNodeNew := subNode.updated(edit, key, keyHash, shift+partitionBits, h, ch)
		if !ch.modified {
			return n
		}
		// subNode and subNodeNew may be identical if updated transiently
		// in place; change has to be tracked through ch, not by diffing.
		return n.withNode(edit, bitpos, subNodeNew)
	default: // slot is empty
		ch.modified = true
		return n.withInsertedKey(edit, bitpos, key)
	}
}

func (n *bitmapNode[E]) removed(edit nonce, key E, keyHash, shift uint32, ch *change) node[E] {
	bitpos := bitposOf(maskOf(keyHash, shift))
	switch {
	case n.dataMap&bitpos != 0: // inline element occupies the slot
		inx := indexOf(n.dataMap, bitpos)
		if n.keys[inx] != key {
			return n
		}
		ch.modified = true
		if n.payloadArity() == 2 && n.nodeArity() == 0 {
			// Node shrinks to a single remaining element: build a degenerate
			// node carrying just that element. At the root the remaining bit
			// position is kept; below the root the bit position is re-derived
			// at shift 0, since the node is destined to be inlined upward.
			var dataMap uint32
			if shift == 0 {
				dataMap = n.dataMap ^ bitpos
			} else {
				dataMap = bitposOf(maskOf(keyHash, 0))
			}
			return &bitmapNode[E]{edit: edit, dataMap: dataMap, keys: []E{n.keys[1-inx]}}
		}
		return n.withRemovedKey(edit, bitpos)
	case n.nodeMap&bitpos != 0: // sub-node occupies the slot
		subNode := n.nodes[indexOf(n.nodeMap, bitpos)]
		subNodeNew := subNode.removed(edit, key, keyHash, shift+partitionBits, ch)
		if !ch.modified {
			return n
		}
		switch subNodeNew.sizeClass() {
		case sizeEmpty:
			assertThat(false, "sub-node must hold at least one element")
			return n
		case sizeOne:
			if n.payloadArity() == 0 && n.nodeArity() == 1 {
				// n would degenerate to a pure passthrough: escalate the
				// singleton result to replace n altogether.
				return subNodeNew
			}
			return n.migrateNodeToInline(edit, bitpos, subNodeNew)
		default:
			return n.withNode(edit, bitpos, subNodeNew)
		}
	}
	return n
}

// mergeKeyPair builds the smallest sub-trie separating two distinct keys,
// descending for as long as their partitions collide. Keys ending up on the
// same level are ordered by ascending partition value, making the layout
// canonical, i.e. independent of insertion history.
func mergeKeyPair[E comparable](edit nonce, key0 E, hash0 uint32, key1 E, hash1 uint32,
	shift uint32) node[E] {
	//
	assertThat(key0 != key1, "attempt to merge a key with itself")
	if shift >= hashWidth {
		return &collisionNode[E]{edit: edit, hash: hash0, keys: []E{key0, key1}}
	}
	mask0, mask1 := maskOf(hash0, shift), maskOf(hash1, shift)
	if mask0 != mask1 { // both keys fit on this level
		dataMap := bitposOf(mask0) | bitposOf(mask1)
		if mask0 < mask1 {
			return &bitmapNode[E]{edit: edit, dataMap: dataMap, keys: []E{key0, key1}}
		}
		return &bitmapNode[E]{edit: edit, dataMap: dataMap, keys: []E{key1, key0}}
	}
	subNode := mergeKeyPair(edit, key0, hash0, key1, hash1, shift+partitionBits)
	return &bitmapNode[E]{edit: edit, nodeMap: bitposOf(mask0), nodes: []node[E]{subNode}}
}

// --- Copy-on-write slot surgery --------------------------------------------

func (n *bitmapNode[E]) withInsertedKey(edit nonce, bitpos uint32, key E) *bitmapNode[E] {
	keys := sliceInsert(n.keys, indexOf(n.dataMap, bitpos), key)
	return &bitmapNode[E]{edit: edit, nodeMap: n.nodeMap, dataMap: n.dataMap | bitpos,
		keys: keys, nodes: n.copyNodes()}
}

func (n *bitmapNode[E]) withRemovedKey(edit nonce, bitpos uint32) *bitmapNode[E] {
	keys := sliceRemove(n.keys, indexOf(n.dataMap, bitpos))
	return &bitmapNode[E]{edit: edit, nodeMap: n.nodeMap, dataMap: n.dataMap ^ bitpos,
		keys: keys, nodes: n.copyNodes()}
}

// withNode replaces the sub-node at bitpos, in place if n is owned by edit.
func (n *bitmapNode[E]) withNode(edit nonce, bitpos uint32, sub node[E]) *bitmapNode[E] {
	inx := indexOf(n.nodeMap, bitpos)
	if allowedToEdit(n.edit, edit) {
		n.nodes[inx] = sub
		return n
	}
	return &bitmapNode[E]{edit: edit, nodeMap: n.nodeMap, dataMap: n.dataMap,
		keys: n.copyKeys(), nodes: sliceSet(n.nodes, inx, sub)}
}

// migrateInlineToNode frees the inline slot at bitpos and occupies the
// corresponding node slot with sub.
func (n *bitmapNode[E]) migrateInlineToNode(edit nonce, bitpos uint32, sub node[E]) *bitmapNode[E] {
	keys := sliceRemove(n.keys, indexOf(n.dataMap, bitpos))
	nodes := sliceInsert(n.nodes, indexOf(n.nodeMap, bitpos), sub)
	return &bitmapNode[E]{edit: edit, nodeMap: n.nodeMap | bitpos, dataMap: n.dataMap ^ bitpos,
		keys: keys, nodes: nodes}
}

// migrateNodeToInline inlines the single surviving element of sub into n,
// freeing the node slot at bitpos.
func (n *bitmapNode[E]) migrateNodeToInline(edit nonce, bitpos uint32, sub node[E]) *bitmapNode[E] {
	keys := sliceInsert(n.keys, indexOf(n.dataMap, bitpos), sub.getKey(0))
	nodes := sliceRemove(n.nodes, indexOf(n.nodeMap, bitpos))
	return &bitmapNode[E]{edit: edit, nodeMap: n.nodeMap ^ bitpos, dataMap: n.dataMap | bitpos,
		keys: keys, nodes: nodes}
}

func (n *bitmapNode[E]) copyKeys() []E {
	keys := make([]E, len(n.keys))
	copy(keys, n.keys)
	return keys
}

func (n *bitmapNode[E]) copyNodes() []node[E] {
	nodes := make([]node[E], len(n.nodes))
	copy(nodes, n.nodes)
	return nodes
}

// --- Arity and equivalence -------------------------------------------------

func (n *bitmapNode[E]) hasNodes() bool { return n.nodeMap != 0 }

func (n *bitmapNode[E]) hasPayload() bool { return n.dataMap != 0 }

func (n *bitmapNode[E]) nodeArity() int { return bits.OnesCount32(n.nodeMap) }

func (n *bitmapNode[E]) payloadArity() int { return bits.OnesCount32(n.dataMap) }

func (n *bitmapNode[E]) getKey(index int) E { return n.keys[index] }

func (n *bitmapNode[E]) getNode(index int) node[E] { return n.nodes[index] }

func (n *bitmapNode[E]) sizeClass() sizeClass {
	if n.nodeMap != 0 {
		return sizeMany
	}
	switch n.payloadArity() {
	case 0:
		return sizeEmpty
	case 1:
		return sizeOne
	}
	return sizeMany
}

// equivalent is a deep structural comparison, tolerating different physical
// node identities produced by different merge histories. Inline elements are
// compared positionally, sub-nodes recursively.
func (n *bitmapNode[E]) equivalent(other node[E]) bool {
	if other == node[E](n) {
		return true
	}
	that, ok := other.(*bitmapNode[E])
	if !ok || n.nodeMap != that.nodeMap || n.dataMap != that.dataMap {
		return false
	}
	for i, key := range n.keys {
		if that.keys[i] != key {
			return false
		}
	}
	for i, sub := range n.nodes {
		if !sub.equivalent(that.nodes[i]) {
			return false
		}
	}
	return true
}

func (n *bitmapNode[E]) String() string {
	b := strings.Builder{}
	b.WriteByte('[')
	for i, key := range n.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%v", key))
	}
	for range n.nodes {
		if b.Len() > 1 {
			b.WriteByte(',')
		}
		b.WriteString("▪︎")
	}
	b.WriteByte(']')
	return b.String()
}
