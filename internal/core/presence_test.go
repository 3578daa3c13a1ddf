package core

import (
	"reflect"
	"testing"
)

func TestPresenceSetRejectsDuplicate(t *testing.T) {
	p := NewPresence()
	a := NewClient("tok-a")
	b := NewClient("tok-b")

	if !p.Set("alice", a) {
		t.Fatal("first set should succeed")
	}
	if p.Set("alice", b) {
		t.Fatal("second set for the same nickname must be rejected")
	}
	if p.Get("alice") != a {
		t.Fatal("original binding must survive a rejected set")
	}
}

func TestPresenceRemoveOnlyForBoundSession(t *testing.T) {
	p := NewPresence()
	a := NewClient("tok-a")
	b := NewClient("tok-b")

	p.Set("alice", a)

	// A stale session must not be able to evict the current binding.
	if p.Remove("alice", b) {
		t.Fatal("remove by a different session must be a no-op")
	}
	if !p.Contains("alice") {
		t.Fatal("binding should still exist")
	}

	if !p.Remove("alice", a) {
		t.Fatal("remove by the bound session should succeed")
	}
	if p.Contains("alice") || p.Len() != 0 {
		t.Fatal("table should be empty after remove")
	}
}

func TestPresenceRosterSorted(t *testing.T) {
	p := NewPresence()
	for _, nickname := range []string{"charlie", "alice", "bob"} {
		p.Set(nickname, NewClient("tok-"+nickname))
	}

	want := []string{"alice", "bob", "charlie"}
	if got := p.Roster(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
