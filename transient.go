package champ

// Transient is an ephemeral, mutable view over a persistent set, intended
// for efficient batch construction. Every node a transient creates or
// touches is tagged with the transient's unique edit token; such a node may
// be mutated in place as long as the token is live, so batch insertion costs
// amortized O(1) per element instead of O(depth) copies.
//
// A transient is exclusively owned: it must neither be shared nor mutated
// concurrently. The edit token protects two transients from ever mutating a
// shared node in place, but it is no substitute for mutual exclusion within
// one transient.
//
// Persistent freezes the transient back into an immutable Set and
// invalidates it; using a transient after freezing panics.
type Transient[E comparable] struct {
	props[E]
	root    *bitmapNode[E]
	hashVal uint32
	length  int
	edit    nonce
}

// Transient returns a mutable view over the set. This operation is O(1);
// the set itself remains untouched by any subsequent mutation of the
// transient.
func (s Set[E]) Transient() *Transient[E] {
	return &Transient[E]{
		props:   s.props,
		root:    s.rootNode(),
		hashVal: s.hashVal,
		length:  s.length,
		edit:    newNonce(),
	}
}

// Add inserts elem, reporting whether the set changed.
func (t *Transient[E]) Add(elem E) bool {
	assertThat(t.edit != nil, "transient set used after freeze")
	h := t.hasher()
	keyHash := h(elem)
	ch := change{}
	t.root = t.root.updated(t.edit, elem, keyHash, 0, h, &ch).(*bitmapNode[E])
	if !ch.modified {
		return false
	}
	t.hashVal += keyHash
	t.length++
	return true
}

// AddAll inserts all given elements, reporting whether the set changed.
func (t *Transient[E]) AddAll(elems ...E) bool {
	modified := false
	for _, elem := range elems {
		modified = t.Add(elem) || modified
	}
	return modified
}

// Remove deletes elem, reporting whether the set changed.
func (t *Transient[E]) Remove(elem E) bool {
	assertThat(t.edit != nil, "transient set used after freeze")
	keyHash := t.hasher()(elem)
	ch := change{}
	t.root = t.root.removed(t.edit, elem, keyHash, 0, &ch).(*bitmapNode[E])
	if !ch.modified {
		return false
	}
	t.hashVal -= keyHash
	t.length--
	return true
}

// Contains reports whether elem is a member of the transient set.
func (t *Transient[E]) Contains(elem E) bool {
	assertThat(t.edit != nil, "transient set used after freeze")
	return t.root.contains(elem, t.hasher()(elem), 0)
}

// Size returns the number of elements in the transient set.
func (t *Transient[E]) Size() int {
	return t.length
}

// IsEmpty reports whether the transient set contains no elements.
func (t *Transient[E]) IsEmpty() bool {
	return t.length == 0
}

// Persistent freezes the transient into an immutable Set. The transient
// must not be used afterwards: its edit token is retired, so the returned
// set can never be aliased by further in-place mutation.
func (t *Transient[E]) Persistent() Set[E] {
	assertThat(t.edit != nil, "transient set used after freeze")
	t.edit = nil
	tracer().Debugf("transient: froze set of size %d", t.length)
	return Set[E]{props: t.props, root: t.root, hashVal: t.hashVal, length: t.length}
}
