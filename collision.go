package champ

import (
	"fmt"
	"strings"
)

// collisionNode is a leaf bucket holding at least 2 elements whose full
// 32-bit hash codes are identical, i.e. the trie depth is exhausted.
// Operations are linear scans over the bucket; true full-hash collisions
// are rare enough that buckets stay tiny.
type collisionNode[E comparable] struct {
	edit nonce
	hash uint32
	keys []E
}

func (n *collisionNode[E]) contains(key E, keyHash, shift uint32) bool {
	if n.hash != keyHash {
		return false
	}
	for _, k := range n.keys {
		if k == key {
			return true
		}
	}
	return false
}

func (n *collisionNode[E]) updated(edit nonce, key E, keyHash, shift uint32, h Hasher[E],
	ch *change) node[E] {
	//
	assertThat(n.hash == keyHash, "key hash %x does not match collision bucket %x", keyHash, n.hash)
	for _, k := range n.keys {
		if k == key {
			return n
		}
	}
	ch.modified = true
	keys := sliceInsert(n.keys, len(n.keys), key)
	if allowedToEdit(n.edit, edit) {
		n.keys = keys
		return n
	}
	return &collisionNode[E]{edit: edit, hash: n.hash, keys: keys}
}

func (n *collisionNode[E]) removed(edit nonce, key E, keyHash, shift uint32, ch *change) node[E] {
	for inx, k := range n.keys {
		if k != key {
			continue
		}
		ch.modified = true
		switch len(n.keys) {
		case 1:
			return emptyNode[E]()
		case 2:
			// Degenerate node with the surviving element, bit position derived
			// at shift 0. It will either become the new root or be inlined
			// upward by the caller.
			return &bitmapNode[E]{edit: edit, dataMap: bitposOf(maskOf(keyHash, 0)),
				keys: []E{n.keys[1-inx]}}
		default:
			keys := sliceRemove(n.keys, inx)
			if allowedToEdit(n.edit, edit) {
				n.keys = keys
				return n
			}
			return &collisionNode[E]{edit: edit, hash: n.hash, keys: keys}
		}
	}
	return n
}

// unionWith performs a bucket-level set union: keep this bucket, append the
// other bucket's elements not already present. Quadratic in bucket size;
// matched elements are flagged so they are not compared over and over.
func (n *collisionNode[E]) unionWith(other node[E], shift uint32, h Hasher[E],
	bulk *bulkChange) node[E] {
	//
	that, ok := other.(*collisionNode[E])
	assertThat(ok, "trie depth exhausted, expected a collision bucket")
	if that == n { // shared bucket, pre-counted once too often
		bulk.sizeDelta -= len(n.keys)
		bulk.hashDelta -= uint32(len(n.keys)) * n.hash
		return n
	}
	keys := make([]E, len(n.keys), len(n.keys)+len(that.keys))
	copy(keys, n.keys)
	matched := make([]bool, len(n.keys))
outer:
	for _, key := range that.keys {
		for i, k := range n.keys {
			if !matched[i] && k == key {
				matched[i] = true
				bulk.sizeDelta--
				bulk.hashDelta -= n.hash
				continue outer
			}
		}
		keys = append(keys, key)
	}
	if len(keys) > len(n.keys) {
		return &collisionNode[E]{hash: n.hash, keys: keys}
	}
	return n
}

func (n *collisionNode[E]) hasNodes() bool { return false }

func (n *collisionNode[E]) hasPayload() bool { return true }

func (n *collisionNode[E]) nodeArity() int { return 0 }

func (n *collisionNode[E]) payloadArity() int { return len(n.keys) }

func (n *collisionNode[E]) getKey(index int) E { return n.keys[index] }

func (n *collisionNode[E]) getNode(index int) node[E] {
	assertThat(false, "collision bucket is a leaf, has no sub-nodes")
	return nil
}

func (n *collisionNode[E]) sizeClass() sizeClass {
	return sizeMany // invariant: a collision bucket holds ≥ 2 elements
}

// equivalent compares bucket payloads as an order-independent set.
func (n *collisionNode[E]) equivalent(other node[E]) bool {
	if other == node[E](n) {
		return true
	}
	that, ok := other.(*collisionNode[E])
	if !ok || n.hash != that.hash || len(n.keys) != len(that.keys) {
		return false
	}
outer:
	for _, key := range that.keys {
		for _, k := range n.keys {
			if k == key {
				continue outer
			}
		}
		return false
	}
	return true
}

func (n *collisionNode[E]) String() string {
	b := strings.Builder{}
	b.WriteByte('{')
	for i, k := range n.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(fmt.Sprintf("%v", k))
	}
	b.WriteByte('}')
	return b.String()
}
