// AngelaMos | 2026
// policy.go

package tier

import (
	"errors"
	"fmt"
	"log/slog"
)

// ErrInvalidTier indicates a tier value outside the closed enum. Tiers are
// stored as constrained columns, so seeing this means upstream data is corrupt.
var ErrInvalidTier = errors.New("invalid tier")

type Tier string

const (
	Free  Tier = "free"
	Tier1 Tier = "tier1"
	Tier2 Tier = "tier2"
)

// All lists the valid tiers in ascending access order.
func All() []Tier {
	return []Tier{Free, Tier1, Tier2}
}

func Valid(t Tier) bool {
	switch t {
	case Free, Tier1, Tier2:
		return true
	}
	return false
}

// Rank maps a tier onto the total order free < tier1 < tier2.
func Rank(t Tier) (int, error) {
	switch t {
	case Free:
		return 0, nil
	case Tier1:
		return 1, nil
	case Tier2:
		return 2, nil
	}
	return 0, fmt.Errorf("rank tier %q: %w", t, ErrInvalidTier)
}

// CanAccess reports whether a user on userTier may view content gated at
// requiredTier. An invalid tier on either side denies access and is logged
// as a data-integrity fault rather than surfaced to the caller.
func CanAccess(userTier, requiredTier Tier) bool {
	userRank, err := Rank(userTier)
	if err != nil {
		slog.Error("tier policy: invalid user tier", "tier", userTier)
		return false
	}

	requiredRank, err := Rank(requiredTier)
	if err != nil {
		slog.Error("tier policy: invalid required tier", "tier", requiredTier)
		return false
	}

	return userRank >= requiredRank
}

func Label(t Tier) string {
	switch t {
	case Tier1:
		return "Tier 1"
	case Tier2:
		return "Tier 2"
	default:
		return "Free"
	}
}

// GradientToken returns the presentation token the frontend maps to a
// tier badge gradient. Deterministic 1:1 with the tier set.
func GradientToken(t Tier) string {
	switch t {
	case Tier1:
		return "gradient-tier1"
	case Tier2:
		return "gradient-tier2"
	default:
		return "gradient-free"
	}
}
