package store

import (
	"fmt"
	"sync"
	"testing"
)

func TestSaveAndSnapshot(t *testing.T) {
	s := New()

	if err := s.Save("a", "first message"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap := s.Snapshot()
	if got, want := len(snap), 1; got != want {
		t.Fatalf("Snapshot() len = %d, want %d", got, want)
	}
	if got, want := snap["a"], "first message"; got != want {
		t.Errorf("Snapshot()[%q] = %q, want %q", "a", got, want)
	}
}

func TestSaveOverwrites(t *testing.T) {
	s := New()

	if err := s.Save("a", "old"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Save("a", "new"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap := s.Snapshot()
	if got, want := len(snap), 1; got != want {
		t.Fatalf("Snapshot() len = %d, want %d", got, want)
	}
	if got, want := snap["a"], "new"; got != want {
		t.Errorf("Snapshot()[%q] = %q, want %q", "a", got, want)
	}
}

func TestSaveRejectsEmptyID(t *testing.T) {
	s := New()

	if err := s.Save("", "content"); err == nil {
		t.Error("Save(\"\", ...) error = nil, want error")
	}
	if got, want := s.Len(), 0; got != want {
		t.Errorf("Len() = %d after rejected save, want %d", got, want)
	}
}

func TestConcurrentSaves(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("conv-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Save(id, "content for "+id); err != nil {
				t.Errorf("Save(%q) error = %v", id, err)
			}
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if got, want := len(snap), 50; got != want {
		t.Fatalf("Snapshot() len = %d, want %d", got, want)
	}
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("conv-%d", i)
		if got, want := snap[id], "content for "+id; got != want {
			t.Errorf("Snapshot()[%q] = %q, want %q", id, got, want)
		}
	}
}

func TestConcurrentOverwritesSameID(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		content := fmt.Sprintf("version %d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Save("shared", content); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}()
	}
	wg.Wait()

	// One writer wins; the stored value must be a complete write, not a blend.
	got, ok := s.Get("shared")
	if !ok {
		t.Fatal("Get(\"shared\") not found after concurrent saves")
	}
	valid := false
	for i := 0; i < 20; i++ {
		if got == fmt.Sprintf("version %d", i) {
			valid = true
			break
		}
	}
	if !valid {
		t.Errorf("Get(\"shared\") = %q, want one of the written versions", got)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	if err := s.Save("a", "original"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	snap := s.Snapshot()
	snap["a"] = "mutated"
	snap["b"] = "injected"

	if got, want := s.Len(), 1; got != want {
		t.Errorf("Len() = %d after mutating snapshot, want %d", got, want)
	}
	got, _ := s.Get("a")
	if want := "original"; got != want {
		t.Errorf("Get(%q) = %q, want %q", "a", got, want)
	}
}
