package registry

import (
	"fmt"
	"sync"
	"testing"
)

func TestBindLookupUnbind(t *testing.T) {
	r := New()

	if _, ok := r.Lookup("conn-1"); ok {
		t.Error("Lookup() on empty registry should report absent")
	}

	r.Bind("conn-1", "482913", "Alice")

	binding, ok := r.Lookup("conn-1")
	if !ok {
		t.Fatal("Lookup() after Bind() should find the binding")
	}
	if binding.MeetingCode != "482913" {
		t.Errorf("MeetingCode = %q, want %q", binding.MeetingCode, "482913")
	}
	if binding.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, want %q", binding.DisplayName, "Alice")
	}

	r.Unbind("conn-1")
	if _, ok := r.Lookup("conn-1"); ok {
		t.Error("Lookup() after Unbind() should report absent")
	}
}

func TestRebindReplacesBinding(t *testing.T) {
	r := New()

	r.Bind("conn-1", "111111", "Alice")
	r.Bind("conn-1", "222222", "Alicia")

	binding, ok := r.Lookup("conn-1")
	if !ok {
		t.Fatal("Lookup() should find the binding")
	}
	if binding.MeetingCode != "222222" || binding.DisplayName != "Alicia" {
		t.Errorf("binding = %+v, want last bind to win", binding)
	}
}

func TestUnbindAbsentIsNoOp(t *testing.T) {
	r := New()
	r.Unbind("never-bound")

	if _, ok := r.Lookup("never-bound"); ok {
		t.Error("Lookup() should still report absent")
	}
}

func TestConcurrentBindings(t *testing.T) {
	r := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			connID := fmt.Sprintf("conn-%d", n)
			r.Bind(connID, "482913", "user")
			if _, ok := r.Lookup(connID); !ok {
				t.Errorf("Lookup(%s) should find the binding", connID)
			}
			if n%2 == 0 {
				r.Unbind(connID)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		connID := fmt.Sprintf("conn-%d", i)
		_, ok := r.Lookup(connID)
		if i%2 == 0 && ok {
			t.Errorf("Lookup(%s) should report absent after Unbind", connID)
		}
		if i%2 != 0 && !ok {
			t.Errorf("Lookup(%s) should find the binding", connID)
		}
	}
}
