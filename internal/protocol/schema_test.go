package protocol

import "testing"

func TestValidateNotification_Samples(t *testing.T) {
	ok := []Notification{
		{Tick: 1, Type: NoteHealthChanged, Value: 99.5},
		{Tick: 1, Type: NoteDeath},
		{Tick: 2, Type: NoteScoreChanged, Score: 50},
		{Tick: 3, Type: NoteStrategyChanged, Strategy: "Balanced"},
		{Tick: 3, Type: NoteStateChanged, State: "MovingToTarget"},
		{Tick: 4, Type: NoteTargetSelected, ItemID: "ball-1", Points: 10},
		{Tick: 5, Type: NoteDeposit, ItemID: "ball-1", Points: 10, Score: 10},
	}
	for _, n := range ok {
		if err := ValidateNotification(n); err != nil {
			t.Fatalf("validate %s: %v", n.Type, err)
		}
	}
}

func TestValidateNotification_Rejects(t *testing.T) {
	bad := []Notification{
		{Tick: 1, Type: "EXPLODED"},
		{Tick: 1, Type: NoteStrategyChanged},
		{Tick: 1, Type: NoteStrategyChanged, Strategy: "Reckless"},
		{Tick: 1, Type: NoteTargetSelected},
	}
	for _, n := range bad {
		if err := ValidateNotification(n); err == nil {
			t.Fatalf("expected %+v to be rejected", n)
		}
	}
}

func TestIsKnownNote(t *testing.T) {
	if !IsKnownNote(NoteDeath) || IsKnownNote("NOPE") {
		t.Fatalf("note classification mismatch")
	}
}
