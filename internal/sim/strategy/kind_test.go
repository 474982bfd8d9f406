package strategy

import (
	"strings"
	"testing"
)

func TestKindString_Exhaustive(t *testing.T) {
	want := map[Kind]string{
		KindClosest:     "Closest",
		KindGreedy:      "Greedy",
		KindBalanced:    "Balanced",
		KindSafetyFirst: "SafetyFirst",
	}
	for k, name := range want {
		if k.String() != name {
			t.Fatalf("%d: got %q want %q", k, k.String(), name)
		}
	}
	if Kind(0).String() != "Unknown" {
		t.Fatalf("zero kind should be Unknown")
	}
}

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"Closest":      KindClosest,
		"greedy":       KindGreedy,
		" BALANCED ":   KindBalanced,
		"safety_first": KindSafetyFirst,
		"safety-first": KindSafetyFirst,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}

func TestParseKind_Suggests(t *testing.T) {
	_, err := ParseKind("greddy")
	if err == nil || !strings.Contains(err.Error(), "did you mean Greedy") {
		t.Fatalf("expected suggestion, got %v", err)
	}
	_, err = ParseKind("teleport")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("expected plain error, got %v", err)
	}
	if _, err := ParseKind(""); err == nil {
		t.Fatalf("expected error for empty name")
	}
}
