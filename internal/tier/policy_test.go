// AngelaMos | 2026
// policy_test.go

package tier_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/tier"
)

func TestRankIsStrictlyIncreasing(t *testing.T) {
	previous := -1
	for _, tr := range tier.All() {
		rank, err := tier.Rank(tr)
		require.NoError(t, err)
		require.Greater(t, rank, previous, "rank must increase for %s", tr)
		previous = rank
	}
}

func TestRankRejectsUnknownTier(t *testing.T) {
	_, err := tier.Rank(tier.Tier("platinum"))
	require.ErrorIs(t, err, tier.ErrInvalidTier)

	_, err = tier.Rank(tier.Tier(""))
	require.ErrorIs(t, err, tier.ErrInvalidTier)
}

func TestCanAccessMatchesRankComparison(t *testing.T) {
	for _, userTier := range tier.All() {
		for _, requiredTier := range tier.All() {
			userRank, err := tier.Rank(userTier)
			require.NoError(t, err)
			requiredRank, err := tier.Rank(requiredTier)
			require.NoError(t, err)

			want := userRank >= requiredRank
			require.Equal(t, want, tier.CanAccess(userTier, requiredTier),
				"CanAccess(%s, %s)", userTier, requiredTier)
		}
	}
}

func TestCanAccessIsReflexive(t *testing.T) {
	for _, tr := range tier.All() {
		require.True(t, tier.CanAccess(tr, tr))
	}
}

func TestCanAccessDeniesInvalidTiers(t *testing.T) {
	require.False(t, tier.CanAccess(tier.Tier("bogus"), tier.Free))
	require.False(t, tier.CanAccess(tier.Tier2, tier.Tier("bogus")))
}

func TestPresentationMappingsAreTotal(t *testing.T) {
	seenLabels := make(map[string]struct{})
	seenTokens := make(map[string]struct{})

	for _, tr := range tier.All() {
		label := tier.Label(tr)
		token := tier.GradientToken(tr)

		require.NotEmpty(t, label)
		require.NotEmpty(t, token)

		_, dup := seenLabels[label]
		require.False(t, dup, "duplicate label %q", label)
		seenLabels[label] = struct{}{}

		_, dup = seenTokens[token]
		require.False(t, dup, "duplicate gradient token %q", token)
		seenTokens[token] = struct{}{}
	}
}
