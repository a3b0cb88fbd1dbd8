package champ

import "math/bits"

// unionWith computes n ∪ that in a single sweep over the union of both
// nodes' occupied slots, sharing intact sub-trees instead of re-inserting
// elements one at a time. If no slot actually differs from n, n itself is
// returned: whole sub-tree unions then cost O(1).
//
// Given the same bit position in n and that, the cases are:
//
//	case                     n.dataMap  n.nodeMap  that.dataMap  that.nodeMap
//	-------------------------------------------------------------------------
//	0   do nothing               -          -           -             -
//	1   keep "a" inline         "a"         -           -             -
//	2   keep sub-node x          -          x           -             -
//	4   adopt "b" inline         -          -          "b"            -
//	5.1 keep "a", drop dup      "a"         -          "a"            -
//	5.2 merge into {"a","b"}    "a"         -          "b"            -
//	6   x.updated("b")           -          x          "b"            -
//	8   adopt sub-node y         -          -           -             y
//	9   y.updated("a")          "a"         -           -             y
//	10  x.unionWith(y)           -          x           -             y
//
// All remaining combinations would violate the dataMap/nodeMap disjointness
// invariant. Pass 1 settles every slot involving inline elements and tracks
// which node slots still await sub-node vs. sub-node reconciliation; pass 2
// settles those.
func (n *bitmapNode[E]) unionWith(other node[E], shift uint32, h Hasher[E],
	bulk *bulkChange) node[E] {
	//
	that, ok := other.(*bitmapNode[E])
	assertThat(ok, "union of a trie level with a collision bucket")
	if that == n {
		// Both operands hold this exact sub-tree, so every element in it was
		// pre-counted once too often. Settle the accounting in one walk.
		discountSharedSubTree[E](n, h, bulk)
		return n
	}
	nodeMapNew := n.nodeMap | that.nodeMap
	dataMapNew := n.dataMap | that.dataMap
	thisNodeMapToDo := n.nodeMap
	thatNodeMapToDo := that.nodeMap
	keysNew := make([]E, 0, bits.OnesCount32(dataMapNew))
	// Upper bound: every occupied slot could end up holding a sub-node.
	// Node indices written below stay stable, since slots only ever migrate
	// from dataMapNew to nodeMapNew in ascending bit-position order.
	nodesNew := make([]node[E], bits.OnesCount32(nodeMapNew|dataMapNew))
	changed := false
	ch := change{}

	// Pass 1: all slots with an inline element on either side
	for mapToDo := dataMapNew; mapToDo != 0; mapToDo &= mapToDo - 1 {
		mask := uint32(bits.TrailingZeros32(mapToDo))
		bitpos := bitposOf(mask)
		thisHasData := n.dataMap&bitpos != 0
		thatHasData := that.dataMap&bitpos != 0
		switch {
		case thisHasData && thatHasData:
			thisKey := n.keys[indexOf(n.dataMap, bitpos)]
			thatKey := that.keys[indexOf(that.dataMap, bitpos)]
			if thisKey == thatKey { // case 5.1: duplicate element
				keysNew = append(keysNew, thisKey)
				bulk.hashDelta -= h(thatKey)
				bulk.sizeDelta--
			} else { // case 5.2: merge both into a sub-node
				dataMapNew ^= bitpos
				nodeMapNew |= bitpos
				subNode := mergeKeyPair(nil, thisKey, h(thisKey), thatKey, h(thatKey),
					shift+partitionBits)
				nodesNew[indexOf(nodeMapNew, bitpos)] = subNode
				changed = true
			}
		case thisHasData:
			thisKey := n.keys[indexOf(n.dataMap, bitpos)]
			if that.nodeMap&bitpos != 0 { // case 9: push our element into that's sub-node
				dataMapNew ^= bitpos
				thatNodeMapToDo ^= bitpos
				ch.modified = false
				subNode := that.nodes[indexOf(that.nodeMap, bitpos)]
				subNodeNew := subNode.updated(nil, thisKey, h(thisKey), shift+partitionBits, h, &ch)
				nodesNew[indexOf(nodeMapNew, bitpos)] = subNodeNew
				if !ch.modified { // element was already in the sub-node
					bulk.hashDelta -= h(thisKey)
					bulk.sizeDelta--
				}
				changed = true
			} else { // case 1
				keysNew = append(keysNew, thisKey)
			}
		default:
			thatKey := that.keys[indexOf(that.dataMap, bitpos)]
			if n.nodeMap&bitpos != 0 { // case 6: push that's element into our sub-node
				dataMapNew ^= bitpos
				thisNodeMapToDo ^= bitpos
				ch.modified = false
				subNode := n.nodes[indexOf(n.nodeMap, bitpos)]
				subNodeNew := subNode.updated(nil, thatKey, h(thatKey), shift+partitionBits, h, &ch)
				nodesNew[indexOf(nodeMapNew, bitpos)] = subNodeNew
				if ch.modified {
					changed = true
				} else { // element was already in the sub-node
					bulk.hashDelta -= h(thatKey)
					bulk.sizeDelta--
				}
			} else { // case 4
				keysNew = append(keysNew, thatKey)
				changed = true
			}
		}
	}

	// Pass 2: remaining sub-node slots
	for mapToDo := thisNodeMapToDo | thatNodeMapToDo; mapToDo != 0; mapToDo &= mapToDo - 1 {
		bitpos := bitposOf(uint32(bits.TrailingZeros32(mapToDo)))
		thisToDo := thisNodeMapToDo&bitpos != 0
		thatToDo := thatNodeMapToDo&bitpos != 0
		switch {
		case thisToDo && thatToDo: // case 10
			thisSubNode := n.nodes[indexOf(n.nodeMap, bitpos)]
			thatSubNode := that.nodes[indexOf(that.nodeMap, bitpos)]
			subNodeNew := thisSubNode.unionWith(thatSubNode, shift+partitionBits, h, bulk)
			changed = changed || subNodeNew != thisSubNode
			nodesNew[indexOf(nodeMapNew, bitpos)] = subNodeNew
		case thatToDo: // case 8
			nodesNew[indexOf(nodeMapNew, bitpos)] = that.nodes[indexOf(that.nodeMap, bitpos)]
			changed = true
		default: // case 2
			nodesNew[indexOf(nodeMapNew, bitpos)] = n.nodes[indexOf(n.nodeMap, bitpos)]
		}
	}

	if !changed { // sharing fast path
		return n
	}
	return &bitmapNode[E]{nodeMap: nodeMapNew, dataMap: dataMapNew,
		keys: keysNew, nodes: nodesNew[:bits.OnesCount32(nodeMapNew)]}
}

// discountSharedSubTree subtracts a pointer-shared sub-tree's elements from
// the bulk deltas. They are members of both operands and would otherwise be
// counted twice, since the union pre-counts the whole second operand.
func discountSharedSubTree[E comparable](n node[E], h Hasher[E], bulk *bulkChange) {
	if bucket, ok := n.(*collisionNode[E]); ok {
		bulk.sizeDelta -= len(bucket.keys)
		bulk.hashDelta -= uint32(len(bucket.keys)) * bucket.hash
		return
	}
	b := n.(*bitmapNode[E])
	for _, key := range b.keys {
		bulk.sizeDelta--
		bulk.hashDelta -= h(key)
	}
	for _, sub := range b.nodes {
		discountSharedSubTree(sub, h, bulk)
	}
}
