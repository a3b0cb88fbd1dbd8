package champ

import (
	"fmt"
	"strings"
)

// Set is a persistent set of elements. The zero value is an empty set,
// ready to use; all mutating operations leave their receiver untouched and
// return a new Set, sharing unmodified sub-trees with the old one. Set
// values are therefore safe to share and to read concurrently.
//
//	s := champ.Set[string]{}.With("a").With("b")
//
// Sets cache their size and an aggregate hash code (the wrapping sum of all
// element hashes), making size queries O(1) and giving equality checks a
// cheap negative fast path.
type Set[E comparable] struct {
	props[E]
	root    *bitmapNode[E]
	hashVal uint32
	length  int
}

// Container is the minimal query surface of a set-like collection. Set
// equality accepts any Container, so Sets interoperate with other set
// implementations: two sets are equal iff they have the same size and
// the same members, regardless of representation.
type Container[E comparable] interface {
	Size() int
	Contains(elem E) bool
}

type props[E comparable] struct {
	hash Hasher[E]
}

// hasher resolves the set's hash function, falling back to the default for E.
func (p props[E]) hasher() Hasher[E] {
	if p.hash == nil {
		return defaultHasher[E]()
	}
	return p.hash
}

// Immutable creates an empty persistent set with options, if you need any.
// Use it like this:
//
//	s := champ.Immutable[int](champ.HashFunc(myHash))
//
func Immutable[E comparable](opts ...Option[E]) Set[E] {
	s := Set[E]{}
	for _, option := range opts {
		s.props = option.config(s.props)
	}
	return s
}

// From creates a persistent set containing the given elements.
func From[E comparable](elems ...E) Set[E] {
	return Set[E]{}.WithAll(elems...)
}

// Option is a type to help initializing sets at creation time.
type Option[E comparable] struct {
	config func(props[E]) props[E]
}

// HashFunc is an option to set the hash function for elements of the set.
// The default hash function works for any element type; supplying one is
// only ever needed for deterministic trie layouts (or for provoking hash
// collisions in tests). Sets that are to be combined must share the same
// hash function.
func HashFunc[E comparable](h Hasher[E]) Option[E] {
	return Option[E]{config: func(p props[E]) props[E] {
		p.hash = h
		return p
	}}
}

// --- Queries ---------------------------------------------------------------

// Contains reports whether elem is a member of the set.
func (s Set[E]) Contains(elem E) bool {
	if s.root == nil {
		return false
	}
	return s.root.contains(elem, s.hasher()(elem), 0)
}

// Size returns the number of elements in the set.
func (s Set[E]) Size() int {
	return s.length
}

// IsEmpty reports whether the set contains no elements.
func (s Set[E]) IsEmpty() bool {
	return s.length == 0
}

// HashValue returns the set's aggregate hash code: the wrapping sum of the
// hash codes of all elements. It is order-independent and consistent with
// Equals, and maintained incrementally in O(1) per mutation.
func (s Set[E]) HashValue() uint32 {
	return s.hashVal
}

// Equals compares the set against any set-like collection. Two sets are
// equal iff they have the same size and the same members. For another
// trie-backed Set this is a structural comparison with a size/hash fast
// path; for any other Container it falls back to a containment scan.
func (s Set[E]) Equals(other Container[E]) bool {
	if that, ok := other.(Set[E]); ok {
		if s.length != that.length || s.hashVal != that.hashVal {
			return false
		}
		if s.root == that.root {
			return true
		}
		return s.rootNode().equivalent(that.rootNode())
	}
	if other == nil || s.length != other.Size() {
		return false
	}
	for it := s.Iterator(); it.HasNext(); {
		if !other.Contains(it.Next()) {
			return false
		}
	}
	return true
}

// Iterator returns an iterator producing every element of the set exactly
// once.
func (s Set[E]) Iterator() *Iterator[E] {
	return newIterator[E](s.rootNode())
}

// Each calls f for every element of the set, until f returns false.
func (s Set[E]) Each(f func(elem E) bool) {
	for it := s.Iterator(); it.HasNext(); {
		if !f(it.Next()) {
			return
		}
	}
}

// Elements returns all elements of the set as a slice, in iteration order.
func (s Set[E]) Elements() []E {
	elems := make([]E, 0, s.length)
	for it := s.Iterator(); it.HasNext(); {
		elems = append(elems, it.Next())
	}
	return elems
}

// --- Point mutations -------------------------------------------------------

// With returns a set additionally containing elem. If elem already is a
// member, the receiver itself is returned unchanged: no-op additions do not
// allocate.
func (s Set[E]) With(elem E) Set[E] {
	h := s.hasher()
	keyHash := h(elem)
	ch := change{}
	root := s.rootNode().updated(nil, elem, keyHash, 0, h, &ch).(*bitmapNode[E])
	if !ch.modified {
		return s
	}
	tracer().Debugf("set.With: added %v, size %d → %d", elem, s.length, s.length+1)
	return Set[E]{props: s.props, root: root, hashVal: s.hashVal + keyHash, length: s.length + 1}
}

// Without returns a set without elem. If elem is no member, the receiver
// itself is returned unchanged.
func (s Set[E]) Without(elem E) Set[E] {
	if s.root == nil {
		return s
	}
	keyHash := s.hasher()(elem)
	ch := change{}
	root := s.root.removed(nil, elem, keyHash, 0, &ch).(*bitmapNode[E])
	if !ch.modified {
		return s
	}
	tracer().Debugf("set.Without: removed %v, size %d → %d", elem, s.length, s.length-1)
	return Set[E]{props: s.props, root: root, hashVal: s.hashVal - keyHash, length: s.length - 1}
}

// Clear returns an empty set with the receiver's configuration.
func (s Set[E]) Clear() Set[E] {
	if s.length == 0 {
		return s
	}
	return Set[E]{props: s.props}
}

// --- Bulk operations -------------------------------------------------------

// Union returns the set union of s and other. The union is computed on
// whole tries at once: sub-trees present in only one operand, or shared by
// both, are adopted without being visited. Both sets must have been built
// with the same hash function.
func (s Set[E]) Union(other Set[E]) Set[E] {
	if other.length == 0 {
		return s
	}
	if s.length == 0 {
		return other
	}
	bulk := bulkChange{sizeDelta: other.length, hashDelta: other.hashVal}
	root := s.root.unionWith(other.root, 0, s.hasher(), &bulk).(*bitmapNode[E])
	if root == s.root {
		return s
	}
	tracer().Debugf("set.Union: %d ∪ %d elements → %d", s.length, other.length,
		s.length+bulk.sizeDelta)
	return Set[E]{props: s.props, root: root,
		hashVal: s.hashVal + bulk.hashDelta, length: s.length + bulk.sizeDelta}
}

// WithAll returns a set additionally containing all given elements. The
// elements are added through a transient, so bulk construction costs
// amortized O(1) per element.
func (s Set[E]) WithAll(elems ...E) Set[E] {
	if len(elems) == 0 {
		return s
	}
	t := s.Transient()
	modified := false
	for _, elem := range elems {
		modified = t.Add(elem) || modified
	}
	if !modified {
		return s
	}
	return t.Persistent()
}

// WithoutAll returns a set without any of the given elements.
func (s Set[E]) WithoutAll(elems ...E) Set[E] {
	if s.length == 0 || len(elems) == 0 {
		return s
	}
	t := s.Transient()
	modified := false
	for _, elem := range elems {
		if t.Remove(elem) {
			modified = true
			if t.IsEmpty() {
				break
			}
		}
	}
	if !modified {
		return s
	}
	return t.Persistent()
}

// Difference returns a set with all members of other removed.
func (s Set[E]) Difference(other Container[E]) Set[E] {
	if s.length == 0 || other == nil || other.Size() == 0 {
		return s
	}
	t := s.Transient()
	modified := false
	for it := s.Iterator(); it.HasNext(); {
		elem := it.Next()
		if other.Contains(elem) && t.Remove(elem) {
			modified = true
			if t.IsEmpty() {
				break
			}
		}
	}
	if !modified {
		return s
	}
	return t.Persistent()
}

// Intersect returns a set retaining only the members of other.
func (s Set[E]) Intersect(other Container[E]) Set[E] {
	if s.length == 0 {
		return s
	}
	if other == nil || other.Size() == 0 {
		return s.Clear()
	}
	t := s.Transient()
	modified := false
	for it := s.Iterator(); it.HasNext(); {
		elem := it.Next()
		if !other.Contains(elem) {
			t.Remove(elem)
			modified = true
			if t.IsEmpty() {
				break
			}
		}
	}
	if !modified {
		return s
	}
	return t.Persistent()
}

// ---------------------------------------------------------------------------

// rootNode treats a nil root as the canonical empty node.
func (s Set[E]) rootNode() *bitmapNode[E] {
	if s.root == nil {
		return emptyNode[E]()
	}
	return s.root
}

func (s Set[E]) String() string {
	b := strings.Builder{}
	b.WriteByte('{')
	first := true
	s.Each(func(elem E) bool {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(fmt.Sprintf("%v", elem))
		return true
	})
	b.WriteByte('}')
	return b.String()
}
