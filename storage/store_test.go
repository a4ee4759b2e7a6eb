package storage

import (
	"strings"
	"testing"
)

func TestByteStoreGetSetRange(t *testing.T) {
	s := NewByteStore("memory", 4)

	if _, err := s.Get(4); err == nil {
		t.Fatalf("expected out-of-range error")
	}
	if err := s.Set(4, 1); err == nil {
		t.Fatalf("expected out-of-range error")
	}

	if err := s.Set(2, 0x42); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := s.Get(2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != 0x42 {
		t.Fatalf("got %#x, want 0x42", v)
	}
}

func TestByteStoreObserversNotifiedOnce(t *testing.T) {
	s := NewByteStore("registers", 2)

	var events []ChangeEvent
	detach := s.Observe(ObserverFunc(func(evt ChangeEvent) {
		events = append(events, evt)
	}))

	if err := s.Set(0, 7); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(1, 9); err != nil {
		t.Fatalf("Set: %v", err)
	}

	detach()

	if err := s.Set(0, 100); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (detach should stop further notifications)", len(events))
	}
	if events[0] != (ChangeEvent{Index: 0, Value: 7}) {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1] != (ChangeEvent{Index: 1, Value: 9}) {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestByteStoreObserversNotifiedInAttachOrder(t *testing.T) {
	s := NewByteStore("memory", 1)

	var order []string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		name := name
		s.Observe(ObserverFunc(func(ChangeEvent) {
			order = append(order, name)
		}))
	}

	if err := s.Set(0, 1); err != nil {
		t.Fatalf("Set: %v", err)
	}

	want := "abcde"
	got := strings.Join(order, "")
	if got != want {
		t.Fatalf("notified in order %q, want %q (attach order, every run)", got, want)
	}
}

func TestByteStoreAllIteratesInOrderAndCanStopEarly(t *testing.T) {
	s := NewByteStore("memory", 5)
	for i := 0; i < 5; i++ {
		_ = s.Set(i, byte(i*10))
	}

	var seen []int
	s.All(func(index int, value byte) bool {
		seen = append(seen, index)
		return index < 2
	})

	if len(seen) != 3 {
		t.Fatalf("got %v, want 3 entries before stopping", seen)
	}
}
