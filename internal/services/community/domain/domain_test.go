package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseEventStatus(t *testing.T) {
	tests := map[string]EventStatus{
		"active":    EventStatusActive,
		" ACTIVE ":  EventStatusActive,
		"upcoming":  EventStatusUpcoming,
		"archived":  EventStatus("archived"),
		"Cancelled": EventStatusCancelled,
	}
	for raw, want := range tests {
		if got := ParseEventStatus(raw); got != want {
			t.Errorf("ParseEventStatus(%q) = %q, want %q", raw, got, want)
		}
	}
	if EventStatus("archived").Joinable() || !EventStatusActive.Joinable() {
		t.Fatal("only active events are joinable")
	}
}

func TestParseNewsPriority(t *testing.T) {
	if got := ParseNewsPriority("URGENT"); got != NewsPriorityUrgent {
		t.Fatalf("got %q, want urgent", got)
	}
	if got := ParseNewsPriority("whatever"); got != NewsPriorityNormal {
		t.Fatalf("got %q, want normal", got)
	}
}

func TestEventFull(t *testing.T) {
	if (Event{MaxParticipants: 10, CurrentParticipants: 9}).Full() {
		t.Fatal("9/10 is not full")
	}
	if !(Event{MaxParticipants: 10, CurrentParticipants: 10}).Full() {
		t.Fatal("10/10 is full")
	}
	if !(Event{}).Full() {
		t.Fatal("zero capacity is full")
	}
}

func TestEventCloneDoesNotAlias(t *testing.T) {
	orig := Event{
		ID:           "e1",
		Rewards:      []Reward{{Kind: "gold", Amount: 100}},
		Requirements: map[string]string{"level": "5"},
	}
	clone := orig.Clone()
	clone.Rewards[0].Amount = 1
	clone.Requirements["level"] = "1"

	want := Event{
		ID:           "e1",
		Rewards:      []Reward{{Kind: "gold", Amount: 100}},
		Requirements: map[string]string{"level": "5"},
	}
	if diff := cmp.Diff(want, orig); diff != "" {
		t.Fatalf("original mutated (-want +got):\n%s", diff)
	}
}

func TestDiscussionCloneDoesNotAlias(t *testing.T) {
	orig := Discussion{ID: "d1", Tags: []string{"meta"}}
	clone := orig.Clone()
	clone.Tags[0] = "changed"
	if orig.Tags[0] != "meta" {
		t.Fatalf("original tags mutated: %v", orig.Tags)
	}
}

func TestSessionAuthenticated(t *testing.T) {
	if (Session{}).Authenticated() {
		t.Fatal("zero session must be anonymous")
	}
	if (Session{UserID: "  "}).Authenticated() {
		t.Fatal("blank user id must be anonymous")
	}
	if !(Session{UserID: "u1"}).Authenticated() {
		t.Fatal("expected authenticated session")
	}
}
