/*
Package champ implements a persistent (immutable) set, backed by a
Compressed Hash-Array Mapped Prefix-tree (CHAMP).

Creating a modified copy of a set—with a single element added or
removed—costs O(1) in time and space, bounded by the depth of the trie
only. Unmodified sub-trees are shared between the old and the new set
(structural sharing), which makes persistent sets cheap to copy and safe
to hand out: a set value, once created, never changes, and may be read
concurrently without synchronization.

A zero value Set is an empty set, ready to use:

	s := champ.Set[int]{}.With(1).With(2).With(3)
	s.Contains(2)            // ⇒ true
	t := s.Without(2)        // s is unchanged
	u := s.Union(t)          // bulk union, sharing intact sub-trees

For batch construction, a transient view avoids excessive copying by
mutating exclusively owned nodes in place (see Set.Transient).

The CHAMP encoding follows Steindorfer & Vinju, "Optimizing Hash-Array
Mapped Tries for Fast and Lean Immutable JVM Collections", OOPSLA'15.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package champ

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'persistent.champ'.
func tracer() tracing.Trace {
	return tracing.Select("persistent.champ")
}
