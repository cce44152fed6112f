package registry_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/epiq/epiq/internal/registry"
)

func k(num, den uint64) registry.Key { return registry.Key{Num: num, Den: den} }

func TestKey_Compare(t *testing.T) {
	tests := []struct {
		a, b registry.Key
		want int
	}{
		{k(1, 1), k(2, 1), -1},
		{k(2, 1), k(1, 1), 1},
		{k(1, 2), k(2, 4), 0},
		{k(3, 2), k(5, 3), -1},
		{k(math.MaxUint64, 1), k(math.MaxUint64-1, 1), 1},
		{k(math.MaxUint64, math.MaxUint64), k(1, 1), 0},
	}

	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%s.Compare(%s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMediant_StrictlyBetween(t *testing.T) {
	pairs := [][2]registry.Key{
		{k(1, 1), k(2, 1)},
		{k(1, 1), k(3, 2)},
		{k(3, 2), k(2, 1)},
		{k(7, 5), k(10, 7)},
		{k(1, 3), k(1, 2)},
	}

	for _, p := range pairs {
		a, b := p[0], p[1]
		m := registry.Mediant(a, b)
		if !a.Less(m) || !m.Less(b) {
			t.Errorf("mediant %s not strictly between %s and %s", m, a, b)
		}
	}
}

func TestRegistry_InsertAdjacent(t *testing.T) {
	r := registry.New("head")

	k1 := r.InsertAdjacent(registry.Head, "a")
	if k1 != k(2, 1) {
		t.Fatalf("tail insert = %s, want 2/1", k1)
	}
	k2 := r.InsertAdjacent(k1, "b")
	if k2 != k(3, 1) {
		t.Fatalf("tail insert = %s, want 3/1", k2)
	}
	mid := r.InsertAdjacent(registry.Head, "between")
	if mid != k(3, 2) {
		t.Fatalf("middle insert = %s, want 3/2", mid)
	}
	mid2 := r.InsertAdjacent(mid, "between2")
	if mid2 != k(5, 3) {
		t.Fatalf("middle insert = %s, want 5/3", mid2)
	}

	want := []registry.Key{registry.Head, mid, mid2, k1, k2}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if got := r.Get(mid2); got != "between2" {
		t.Errorf("Get(%s) = %q", mid2, got)
	}
}

func TestRegistry_RepeatedMiddleInsertKeepsOrder(t *testing.T) {
	r := registry.New(0)
	r.InsertAdjacent(registry.Head, 1)

	focus := registry.Head
	for i := 0; i < 50; i++ {
		focus = r.InsertAdjacent(focus, i)
	}

	keys := r.Keys()
	for i := 1; i < len(keys); i++ {
		if !keys[i-1].Less(keys[i]) {
			t.Fatalf("keys out of order at %d: %s >= %s", i, keys[i-1], keys[i])
		}
	}
}

func TestRegistry_Navigate(t *testing.T) {
	r := registry.New("h")
	k1 := r.InsertAdjacent(registry.Head, "1")
	k2 := r.InsertAdjacent(k1, "2")
	k3 := r.InsertAdjacent(k2, "3")

	tests := []struct {
		name     string
		from     registry.Key
		up, down int
		want     registry.Key
	}{
		{"no-op", k2, 1, 1, k2},
		{"down one", registry.Head, 0, 1, k1},
		{"up one", k2, 1, 0, k1},
		{"net down", k1, 1, 3, k3},
		{"saturate at tail", k2, 0, 10, k3},
		{"saturate at head", k2, 10, 0, registry.Head},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Navigate(tt.from, tt.up, tt.down); got != tt.want {
				t.Errorf("Navigate(%s, %d, %d) = %s, want %s", tt.from, tt.up, tt.down, got, tt.want)
			}
		})
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := registry.New("h")
	k1 := r.InsertAdjacent(registry.Head, "1")
	k2 := r.InsertAdjacent(k1, "2")

	if got := r.Remove(k2); got != k1 {
		t.Errorf("Remove(%s) = %s, want %s", k2, got, k1)
	}
	if r.Has(k2) {
		t.Error("removed key still present")
	}
	if got := r.Remove(registry.Head); got != registry.Head {
		t.Errorf("Remove(head) = %s", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestRegistry_InsertThenRemoveRestores(t *testing.T) {
	r := registry.New("h")
	k1 := r.InsertAdjacent(registry.Head, "1")
	r.InsertAdjacent(k1, "2")

	before := r.Keys()
	for _, focus := range before {
		added := r.InsertAdjacent(focus, "tmp")
		if got := r.Remove(added); got != focus {
			t.Errorf("focus after insert/remove = %s, want %s", got, focus)
		}
		if after := r.Keys(); !reflect.DeepEqual(after, before) {
			t.Errorf("keys = %v, want %v", after, before)
		}
	}
}

func TestRegistry_ShrinkToFit(t *testing.T) {
	r := registry.New("h")
	k1 := r.InsertAdjacent(registry.Head, "1")
	k2 := r.InsertAdjacent(k1, "2")
	k3 := r.InsertAdjacent(k2, "3")

	removed := r.ShrinkToFit(2)
	if want := []registry.Key{k3, k2}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	removed = r.ShrinkToFit(0)
	if want := []registry.Key{k1}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	if r.Len() != 1 || r.Last() != registry.Head {
		t.Error("head must survive shrinking")
	}

	if removed := r.ShrinkToFit(5); removed != nil {
		t.Errorf("nothing to remove, got %v", removed)
	}
}

func TestRegistry_ToggleIgnore(t *testing.T) {
	r := registry.New("h")
	k1 := r.InsertAdjacent(registry.Head, "1")

	if !r.ToggleIgnore(k1) || !r.Ignored(k1) {
		t.Error("expected stage to be ignored")
	}
	if r.Get(k1) != "1" {
		t.Error("toggle must not change the value")
	}
	if r.ToggleIgnore(k1) {
		t.Error("expected stage to be active again")
	}

	var active []string
	r.Each(func(_ registry.Key, v string, ignored bool) {
		if !ignored {
			active = append(active, v)
		}
	})
	if !reflect.DeepEqual(active, []string{"h", "1"}) {
		t.Errorf("active = %v", active)
	}
}

func TestRegistry_UnknownKeyPanics(t *testing.T) {
	r := registry.New("h")

	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok {
			t.Fatalf("expected error panic, got %v", rec)
		}
		var uk *registry.UnknownKeyError
		if !errors.As(err, &uk) || uk.Key != k(9, 4) {
			t.Errorf("unexpected panic value %v", err)
		}
	}()

	r.Navigate(k(9, 4), 0, 1)
}

func TestKey_OverflowPanics(t *testing.T) {
	tests := []struct {
		name string
		fn   func() registry.Key
		key  registry.Key
	}{
		{
			name: "mediant numerator",
			fn:   func() registry.Key { return registry.Mediant(k(math.MaxUint64-1, 2), k(math.MaxUint64, 1)) },
			key:  k(math.MaxUint64-1, 2),
		},
		{
			name: "mediant denominator",
			fn:   func() registry.Key { return registry.Mediant(k(1, math.MaxUint64), k(2, math.MaxUint64)) },
			key:  k(1, math.MaxUint64),
		},
		{
			name: "succ",
			fn:   func() registry.Key { return k(math.MaxUint64, 1).Succ() },
			key:  k(math.MaxUint64, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				rec := recover()
				err, ok := rec.(error)
				if !ok {
					t.Fatalf("expected error panic, got %v", rec)
				}
				var oe *registry.OverflowError
				if !errors.As(err, &oe) || oe.Key != tt.key {
					t.Errorf("unexpected panic value %v", err)
				}
			}()

			got := tt.fn()
			t.Fatalf("expected panic, got %s", got)
		})
	}
}

func TestMediant_LargeTermsStayOrdered(t *testing.T) {
	a := k(math.MaxUint64/2, math.MaxUint64/2)
	b := k(math.MaxUint64/2, math.MaxUint64/2-1)

	m := registry.Mediant(a, b)
	if !a.Less(m) || !m.Less(b) {
		t.Errorf("mediant %s not strictly between %s and %s", m, a, b)
	}
}
