package champ

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestTransientBatchConstruction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	tr := Set[int]{}.Transient()
	for i := 0; i < 100; i++ {
		if !tr.Add(i) {
			t.Fatalf("expected Add(%d) to report a change, didn't", i)
		}
	}
	if tr.Add(50) {
		t.Error("expected re-adding 50 to report no change, did")
	}
	if tr.Size() != 100 {
		t.Fatalf("expected transient of size 100, got %d", tr.Size())
	}
	s := tr.Persistent()
	if s.Size() != 100 {
		t.Fatalf("expected frozen set of size 100, got %d", s.Size())
	}
	for i := 0; i < 100; i++ {
		if !s.Contains(i) {
			t.Errorf("expected frozen set to contain %d, doesn't", i)
		}
	}
}

func TestTransientMatchesPersistentConstruction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	tr := Set[int]{}.Transient()
	tr.AddAll(1, 2, 3, 4, 5)
	tr.Remove(4)
	s := tr.Persistent()
	r := Set[int]{}.With(1).With(2).With(3).With(5)
	if !s.Equals(r) {
		t.Errorf("expected transient result %v to equal persistent result %v", s, r)
	}
	if s.HashValue() != r.HashValue() {
		t.Errorf("expected equal hash values, %x != %x", s.HashValue(), r.HashValue())
	}
}

func TestTransientDoesNotDisturbSource(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := Set[int]{}.WithAll(1, 2, 3)
	tr := s.Transient()
	tr.Remove(2)
	tr.AddAll(7, 8, 9)
	if s.Size() != 3 || !s.Contains(2) || s.Contains(7) {
		t.Errorf("expected source set to be unchanged, got %v", s)
	}
	frozen := tr.Persistent()
	if frozen.Size() != 5 {
		t.Errorf("expected frozen set of size 5, got %v", frozen)
	}
}

func TestTransientUseAfterFreezePanics(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	tr := Set[int]{}.Transient()
	tr.Add(1)
	tr.Persistent()
	defer func() {
		if recover() == nil {
			t.Error("expected use of a frozen transient to panic, didn't")
		}
	}()
	tr.Add(2)
}

func TestTransientRemoveReporting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	tr := Set[int]{}.WithAll(1, 2).Transient()
	if !tr.Remove(1) {
		t.Error("expected Remove(1) to report a change, didn't")
	}
	if tr.Remove(1) {
		t.Error("expected second Remove(1) to report no change, did")
	}
	if tr.Contains(1) || !tr.Contains(2) {
		t.Error("expected transient to contain 2 only")
	}
	if !tr.Remove(2) || !tr.IsEmpty() {
		t.Error("expected transient to end up empty, didn't")
	}
}

func TestStructuralSharing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	// 1024 identity-hashed keys fill all 32 root slots with sub-nodes
	s := identSet()
	for i := 0; i < 1024; i++ {
		s = s.With(i)
	}
	if s.root.nodeArity() != 32 || s.root.payloadArity() != 0 {
		t.Fatalf("unexpected trie shape, root is %s", s.root)
	}
	r := s.With(2000).Without(2000) // touches slot 2000&31 = 16 only
	if !r.Equals(s) {
		t.Fatal("expected add-then-remove to restore the set, didn't")
	}
	for i := 0; i < 32; i++ {
		if i == 16 {
			continue
		}
		if r.root.nodes[i] != s.root.nodes[i] {
			t.Errorf("expected unrelated sub-tree %d to be shared by reference, isn't", i)
		}
	}
}

func TestTransientSharesUntouchedSubTrees(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "persistent.champ")
	defer teardown()
	//
	s := identSet()
	for i := 0; i < 1024; i++ {
		s = s.With(i)
	}
	tr := s.Transient()
	tr.Add(2000) // slot 16
	frozen := tr.Persistent()
	for i := 0; i < 32; i++ {
		if i == 16 {
			continue
		}
		if frozen.root.nodes[i] != s.root.nodes[i] {
			t.Errorf("expected transient to leave sub-tree %d shared, didn't", i)
		}
	}
	if frozen.root.nodes[16] == s.root.nodes[16] {
		t.Error("expected the touched sub-tree to have been replaced, wasn't")
	}
}
