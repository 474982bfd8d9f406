package main

import (
	"reflect"
	"testing"

	"caddie.ai/internal/observerproto"
	"caddie.ai/internal/protocol"
)

func TestFormatNote(t *testing.T) {
	cases := []struct {
		n    protocol.Notification
		want string
	}{
		{protocol.Notification{Tick: 3, Type: protocol.NoteHealthChanged, Value: 87.5}, "t=3 HEALTH_CHANGED health=87.5"},
		{protocol.Notification{Tick: 9, Type: protocol.NoteDeposit, ItemID: "a", Points: 20, Score: 50}, "t=9 DEPOSIT item=a points=20 score=50"},
		{protocol.Notification{Tick: 4, Type: protocol.NoteTargetAbandoned, ItemID: "b", Reason: "unsafe"}, `t=4 TARGET_ABANDONED item=b reason="unsafe"`},
		{protocol.Notification{Tick: 1, Type: protocol.NoteDeath}, "t=1 DEATH"},
	}
	for _, tc := range cases {
		if got := formatNote(tc.n); got != tc.want {
			t.Fatalf("formatNote(%+v)=%q want %q", tc.n, got, tc.want)
		}
	}
}

func TestFormatStatus(t *testing.T) {
	got := formatStatus(10, observerproto.AgentState{
		Pos:       [2]float64{1, -2},
		Health:    40,
		MaxHealth: 100,
		Score:     30,
		Strategy:  "Balanced",
		State:     "ReturningToBase",
		HeldID:    "a",
	})
	want := "t=10 status pos=(1.0,-2.0) health=40.0/100 score=30 Balanced/ReturningToBase held=a DEAD"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestSplitTypes(t *testing.T) {
	got := splitTypes(" deposit, DEATH ,,")
	if !reflect.DeepEqual(got, []string{"DEPOSIT", "DEATH"}) {
		t.Fatalf("got %v", got)
	}
	if splitTypes("") != nil {
		t.Fatalf("expected nil for empty")
	}
}
