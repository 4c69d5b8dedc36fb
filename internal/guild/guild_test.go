package guild

import (
	"testing"

	"github.com/udisondev/vtrace/internal/avatarid"
)

func TestNew(t *testing.T) {
	g := New("1")
	if g.ID() != "1" {
		t.Errorf("ID = %q, want %q", g.ID(), "1")
	}
	if g.ObjectID() != "GO_1" {
		t.Errorf("ObjectID = %q, want %q", g.ObjectID(), "GO_1")
	}
	if g.Count() != 0 {
		t.Errorf("Count = %d, want 0", g.Count())
	}
}

func TestAddRemoveMembership(t *testing.T) {
	g := New("1")
	a := avatarid.ID("100")

	g.Add(a)
	if !g.Has(a) {
		t.Error("avatar should be a member after Add")
	}
	if g.Count() != 1 {
		t.Errorf("Count = %d, want 1", g.Count())
	}

	g.Remove(a)
	if g.Has(a) {
		t.Error("avatar should not be a member after Remove")
	}
	if g.Count() != 0 {
		t.Errorf("Count = %d, want 0", g.Count())
	}
}
