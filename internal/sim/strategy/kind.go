package strategy

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Kind identifies one of the four selection policies.
type Kind int

const (
	KindClosest Kind = iota + 1
	KindGreedy
	KindBalanced
	KindSafetyFirst
)

var allKinds = []Kind{KindClosest, KindGreedy, KindBalanced, KindSafetyFirst}

func (k Kind) String() string {
	switch k {
	case KindClosest:
		return "Closest"
	case KindGreedy:
		return "Greedy"
	case KindBalanced:
		return "Balanced"
	case KindSafetyFirst:
		return "SafetyFirst"
	default:
		return "Unknown"
	}
}

// ParseKind accepts display names case-insensitively ("safety_first" and
// "safety-first" too). Near misses get a suggestion in the error.
func ParseKind(s string) (Kind, error) {
	in := normalizeName(s)
	if in == "" {
		return 0, fmt.Errorf("empty strategy name")
	}
	for _, k := range allKinds {
		if normalizeName(k.String()) == in {
			return k, nil
		}
	}
	best, bestDist := Kind(0), 0
	for _, k := range allKinds {
		name := normalizeName(k.String())
		d := levenshtein.ComputeDistance(in, name)
		if d > suggestLimit(len(name)) {
			continue
		}
		if best == 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if best != 0 {
		return 0, fmt.Errorf("unknown strategy %q (did you mean %s?)", s, best)
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

func suggestLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
