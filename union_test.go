package champ

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestUnionDisjointInline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet().WithAll(1, 2)
	r := identSet().WithAll(3, 4)
	u := s.Union(r)
	if !u.Equals(identSet().WithAll(1, 2, 3, 4)) {
		t.Errorf("expected {1,2,3,4}, got %v", u)
	}
	if u.HashValue() != 1+2+3+4 {
		t.Errorf("expected aggregate hash 10, got %d", u.HashValue())
	}
}

func TestUnionCountsDuplicatesOnce(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet().WithAll(1, 2, 3)
	r := identSet().WithAll(3, 4, 5)
	u := s.Union(r)
	if u.Size() != 5 {
		t.Fatalf("expected |{1,2,3} ∪ {3,4,5}| = 5, got %d", u.Size())
	}
	if u.HashValue() != 1+2+3+4+5 {
		t.Errorf("expected aggregate hash 15, got %d", u.HashValue())
	}
	if !u.Equals(identSet().WithAll(1, 2, 3, 4, 5)) {
		t.Errorf("expected {1,2,3,4,5}, got %v", u)
	}
}

func TestUnionMergesCollidingSlots(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	// 1 and 33 share the slot at shift 0: the union must migrate the slot
	// from inline storage to a sub-node
	s := identSet().With(1)
	r := identSet().With(33)
	u := s.Union(r)
	t.Logf("trie =\n%s", printSet(u))
	if u.Size() != 2 || !u.Contains(1) || !u.Contains(33) {
		t.Fatalf("expected {1,33}, got %v", u)
	}
	if u.root.nodeArity() != 1 || u.root.payloadArity() != 0 {
		t.Errorf("expected slot migration to a sub-node, root is %s", u.root)
	}
	if !u.Equals(identSet().With(33).With(1)) {
		t.Error("expected union layout to be canonical, isn't")
	}
}

func TestUnionInlineIntoSubNode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet().WithAll(1, 33) // sub-node at slot 1
	r := identSet().With(65)       // inline at slot 1
	u := s.Union(r)                // that-inline into this-sub-node
	if u.Size() != 3 || !u.Contains(65) {
		t.Fatalf("expected {1,33,65}, got %v", u)
	}
	v := r.Union(s) // this-inline into that-sub-node
	if !v.Equals(u) {
		t.Errorf("expected union to commute, %v != %v", v, u)
	}
	if v.Size() != 3 || v.HashValue() != u.HashValue() {
		t.Errorf("expected size 3 and equal hashes, got %v", v)
	}
	// duplicate element on the inline side must not be double counted
	w := identSet().With(33).Union(s)
	if w.Size() != 2 || !w.Equals(s) {
		t.Errorf("expected {1,33}, got %v", w)
	}
}

func TestUnionRecursesIntoSubNodes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet().WithAll(1, 33)
	r := identSet().WithAll(1, 65)
	u := s.Union(r)
	if !u.Equals(identSet().WithAll(1, 33, 65)) {
		t.Errorf("expected {1,33,65}, got %v", u)
	}
	if u.Size() != 3 || u.HashValue() != 1+33+65 {
		t.Errorf("expected size 3 with hash %d, got size %d hash %d",
			1+33+65, u.Size(), u.HashValue())
	}
}

func TestUnionSharingFastPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet().WithAll(1, 33, 2)
	if s.Union(s).root != s.root {
		t.Error("expected self-union to return the identical root, didn't")
	}
	sub := identSet().WithAll(1, 33)
	if s.Union(sub).root != s.root {
		t.Error("expected union with a subset to return the identical root, didn't")
	}
}

func TestUnionWithDerivedSet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	// r is derived from s, so both operands hold s's slot-1 sub-tree as the
	// identical pointer. Its elements enter the union from both sides and
	// must still be counted exactly once.
	s := identSet().WithAll(1, 33)
	r := s.With(2)
	u := s.Union(r)
	if u.Size() != 3 {
		t.Errorf("expected size 3, got %d", u.Size())
	}
	if u.HashValue() != 1+33+2 {
		t.Errorf("expected aggregate hash 36, got %d", u.HashValue())
	}
	if !u.Equals(identSet().WithAll(1, 2, 33)) {
		t.Errorf("expected {1,2,33}, got %v", u)
	}
	v := r.Union(s)
	if v.Size() != 3 || v.HashValue() != 1+33+2 {
		t.Errorf("expected size 3 with hash 36, got size %d hash %d",
			v.Size(), v.HashValue())
	}
	if !v.Equals(u) {
		t.Errorf("expected union to commute, %v != %v", v, u)
	}
}

func TestUnionAdoptsWholeSubTrees(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet().WithAll(1, 33)  // sub-node at slot 1
	r := identSet().WithAll(2, 34)  // sub-node at slot 2
	u := s.Union(r)
	// both sub-trees must be adopted by reference, without rebuilding
	if u.root.nodeArity() != 2 {
		t.Fatalf("expected two sub-nodes, root is %s", u.root)
	}
	if u.root.nodes[0] != s.root.nodes[0] {
		t.Error("expected this-side sub-tree to be shared, isn't")
	}
	if u.root.nodes[1] != r.root.nodes[0] {
		t.Error("expected that-side sub-tree to be shared, isn't")
	}
}

func TestUnionWithEmpty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet().WithAll(1, 2)
	if s.Union(identSet()).root != s.root {
		t.Error("expected s ∪ ∅ to be s, isn't")
	}
	if !identSet().Union(s).Equals(s) {
		t.Error("expected ∅ ∪ s to be s, isn't")
	}
}

func TestUnionLargeRandomized(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s, r := Set[int]{}, Set[int]{}
	want := map[int]bool{}
	for i := 0; i < 500; i++ {
		s = s.With(i * 3)
		r = r.With(i * 2)
		want[i*3] = true
		want[i*2] = true
	}
	u := s.Union(r)
	if u.Size() != len(want) {
		t.Fatalf("expected union of size %d, got %d", len(want), u.Size())
	}
	for k := range want {
		if !u.Contains(k) {
			t.Errorf("expected union to contain %d, doesn't", k)
		}
	}
	// the aggregate hash must equal the sum over distinct elements
	check := Set[int]{}
	for k := range want {
		check = check.With(k)
	}
	if u.HashValue() != check.HashValue() {
		t.Errorf("expected aggregate hash %x, got %x", check.HashValue(), u.HashValue())
	}
	if !u.Equals(check) {
		t.Error("expected union to equal element-wise construction, doesn't")
	}
}
