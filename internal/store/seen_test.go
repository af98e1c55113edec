package store

import (
	"fmt"
	"testing"
)

func TestSeenStoreBasic(t *testing.T) {
	s := NewSeenStore(100, 0.001)

	if s.Has("Artist - Song") {
		t.Error("empty store should not have any keys")
	}
	if s.Size() != 0 {
		t.Errorf("empty store size = %d, want 0", s.Size())
	}

	s.Add("Artist - Song")
	if !s.Has("Artist - Song") {
		t.Error("store should have the key after Add")
	}
	if s.Size() != 1 {
		t.Errorf("size = %d, want 1", s.Size())
	}

	s.Add("Artist - Song")
	if s.Size() != 1 {
		t.Errorf("size after duplicate Add = %d, want 1", s.Size())
	}

	s.Add("Artist - Other")
	if s.Size() != 2 {
		t.Errorf("size = %d, want 2", s.Size())
	}
}

func TestSeenStoreClear(t *testing.T) {
	s := NewSeenStore(100, 0.001)

	s.Add("a")
	s.Add("b")
	s.Clear()

	if s.Size() != 0 {
		t.Errorf("size after Clear = %d, want 0", s.Size())
	}
	if s.Has("a") {
		t.Error("cleared store still reports key a")
	}
}

func TestSeenStoreEviction(t *testing.T) {
	s := NewSeenStore(10, 0.001)

	for i := 0; i < 25; i++ {
		s.Add(fmt.Sprintf("key-%d", i))
	}

	if s.Size() > 10 {
		t.Errorf("size = %d, want at most 10 after eviction", s.Size())
	}
	if !s.Has("key-24") {
		t.Error("most recent key should survive eviction")
	}
}

func TestSeenStoreConcurrentAccess(t *testing.T) {
	s := NewSeenStore(1000, 0.001)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("g%d-key-%d", g, i)
				s.Add(key)
				if !s.Has(key) {
					t.Errorf("key %s missing right after Add", key)
				}
			}
		}(g)
	}

	for g := 0; g < 4; g++ {
		<-done
	}

	if s.Size() != 400 {
		t.Errorf("size = %d, want 400", s.Size())
	}
}
