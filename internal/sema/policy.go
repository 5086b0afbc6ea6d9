package sema

import (
	"fmt"
	"strings"
)

// BetweenPolicy selects how strictly `v BETWEEN lo AND hi` is typed.
// The bounds always need a common orderable type.
type BetweenPolicy uint8

const (
	// BetweenStrict also requires v to be orderable against the bounds.
	BetweenStrict BetweenPolicy = iota
	// BetweenBoundsOnly checks the bounds against each other only.
	BetweenBoundsOnly
)

func (p BetweenPolicy) String() string {
	switch p {
	case BetweenStrict:
		return "strict"
	case BetweenBoundsOnly:
		return "bounds-only"
	default:
		return fmt.Sprintf("BetweenPolicy(%d)", p)
	}
}

// ParseBetweenPolicy accepts "strict" and "bounds-only" (empty means strict).
func ParseBetweenPolicy(s string) (BetweenPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return BetweenStrict, nil
	case "bounds-only", "bounds_only", "bounds":
		return BetweenBoundsOnly, nil
	default:
		return BetweenStrict, fmt.Errorf("unknown between policy %q (want strict or bounds-only)", s)
	}
}
