package champ

// Iterator walks a set depth-first, using a fixed stack bounded by the
// maximum trie depth. A node's inline elements are drained before its
// sub-nodes are visited in ascending slot order. The sequence is lazy,
// finite and single-pass; its order is deterministic for a given trie
// layout, but not sorted in any way.
//
// An Iterator must not outlive mutations of a transient it was created
// from; iterators over (persistent) Sets are always safe.
type Iterator[E comparable] struct {
	valueNode   node[E]
	valueCursor int
	valueLength int
	stackLevel  int
	stack       [maxDepth]node[E]
	cursors     [maxDepth * 2]int // packed (cursor, length) pairs per level
}

func newIterator[E comparable](root node[E]) *Iterator[E] {
	it := &Iterator[E]{stackLevel: -1}
	if root.hasNodes() {
		it.stackLevel = 0
		it.stack[0] = root
		it.cursors[0] = 0
		it.cursors[1] = root.nodeArity()
	}
	if root.hasPayload() {
		it.valueNode = root
		it.valueCursor = 0
		it.valueLength = root.payloadArity()
	}
	return it
}

// HasNext reports whether a subsequent call to Next will produce an element.
func (it *Iterator[E]) HasNext() bool {
	if it.valueCursor < it.valueLength {
		return true
	}
	return it.searchNextValueNode()
}

// Next produces the next element of the sequence. Calling Next on an
// exhausted iterator is a contract violation and panics.
func (it *Iterator[E]) Next() E {
	assertThat(it.HasNext(), "iteration exhausted, no next element")
	key := it.valueNode.getKey(it.valueCursor)
	it.valueCursor++
	return key
}

// searchNextValueNode descends to the next node carrying payload, popping
// exhausted stack levels on the way.
func (it *Iterator[E]) searchNextValueNode() bool {
	for it.stackLevel >= 0 {
		cursorInx := it.stackLevel * 2
		lengthInx := cursorInx + 1
		if it.cursors[cursorInx] < it.cursors[lengthInx] {
			nextNode := it.stack[it.stackLevel].getNode(it.cursors[cursorInx])
			it.cursors[cursorInx]++
			if nextNode.hasNodes() {
				it.stackLevel++
				it.stack[it.stackLevel] = nextNode
				it.cursors[it.stackLevel*2] = 0
				it.cursors[it.stackLevel*2+1] = nextNode.nodeArity()
			}
			if nextNode.hasPayload() {
				it.valueNode = nextNode
				it.valueCursor = 0
				it.valueLength = nextNode.payloadArity()
				return true
			}
		} else {
			it.stackLevel--
		}
	}
	return false
}
