package collision

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistryAddRemove(t *testing.T) {
	reg := NewRegistry()
	a, b, c := &Projectile{}, &Projectile{}, &Projectile{}
	ha, _ := reg.AddProjectile(a)
	hb, _ := reg.AddProjectile(b)
	hc, _ := reg.AddProjectile(c)
	if ha == 0 || ha == hb || hb == hc {
		t.Fatalf("handles should be distinct and non-zero: %d %d %d", ha, hb, hc)
	}

	if !reg.RemoveProjectile(ha) {
		t.Fatal("remove of live handle should succeed")
	}
	if reg.RemoveProjectile(ha) {
		t.Error("second remove should report false")
	}
	if reg.ProjectileCount() != 2 {
		t.Errorf("count = %d, want 2", reg.ProjectileCount())
	}
	// Swap-remove keeps lookups valid for the moved entry
	if p, ok := reg.Projectile(hc); !ok || p != c {
		t.Error("moved projectile lost its handle mapping")
	}
	if _, ok := reg.Projectile(ha); ok {
		t.Error("removed handle should not resolve")
	}

	// Handles are never reused
	hd, _ := reg.AddProjectile(a)
	if hd == ha {
		t.Error("handle reused after removal")
	}
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	r := &Receiver{}
	h1, err := reg.AddReceiver(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := reg.AddReceiver(r)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("err = %v, want ErrAlreadyRegistered", err)
	}
	if h2 != h1 {
		t.Errorf("duplicate returned %d, want existing %d", h2, h1)
	}
	if reg.ReceiverCount() != 1 {
		t.Errorf("count = %d, want 1", reg.ReceiverCount())
	}
	if _, err := reg.AddReceiver(nil); !errors.Is(err, ErrNilActor) {
		t.Errorf("nil receiver: err = %v", err)
	}
}

func TestRegistryUnknownHandles(t *testing.T) {
	reg := NewRegistry()
	if reg.RemoveReceiver(42) || reg.RemoveProjectile(42) {
		t.Error("unknown handles should be ignored")
	}
	if reg.HasReceiver(0) {
		t.Error("handle 0 is never valid")
	}
}

func TestQueryReceiversCompatibleWith(t *testing.T) {
	reg := NewRegistry()
	h1, _ := reg.AddReceiver(&Receiver{Tags: Tags(0)})
	reg.AddReceiver(&Receiver{Tags: Tags(1)})
	h3, _ := reg.AddReceiver(&Receiver{Tags: Tags(0, 2)})

	got := reg.QueryReceiversCompatibleWith(Tags(0))
	if !slices.Equal(got, []Handle{h1, h3}) {
		t.Errorf("query = %v, want [%d %d]", got, h1, h3)
	}
	if got := reg.QueryReceiversCompatibleWith(0); len(got) != 0 {
		t.Errorf("empty mask matched %v", got)
	}
}
