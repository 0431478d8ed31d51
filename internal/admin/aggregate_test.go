// AngelaMos | 2026
// aggregate_test.go

package admin_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/admin"
	"github.com/angelamos/coursegate/internal/content"
	"github.com/angelamos/coursegate/internal/payment"
	"github.com/angelamos/coursegate/internal/tier"
)

func TestBuildUserStats(t *testing.T) {
	stats := admin.BuildUserStats(map[tier.Tier]int{
		tier.Free:  10,
		tier.Tier1: 4,
		tier.Tier2: 2,
	})

	require.Equal(t, 16, stats.Total)
	require.Equal(t, 6, stats.Paying)
	require.Equal(t, 10, stats.ByTier[tier.Free])
	require.Equal(t, 4, stats.ByTier[tier.Tier1])
	require.Equal(t, 2, stats.ByTier[tier.Tier2])
}

func TestBuildUserStatsFillsMissingTiers(t *testing.T) {
	stats := admin.BuildUserStats(map[tier.Tier]int{tier.Free: 3})

	require.Len(t, stats.ByTier, len(tier.All()))
	require.Equal(t, 0, stats.ByTier[tier.Tier1])
	require.Equal(t, 0, stats.ByTier[tier.Tier2])
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 0, stats.Paying)
}

func TestBuildUserStatsIgnoresUnknownTier(t *testing.T) {
	stats := admin.BuildUserStats(map[tier.Tier]int{
		tier.Free:           1,
		tier.Tier("legacy"): 7,
	})

	require.Equal(t, 1, stats.Total)
	require.NotContains(t, stats.ByTier, tier.Tier("legacy"))
}

func TestBuildPaymentStats(t *testing.T) {
	stats := admin.BuildPaymentStats(map[payment.Status]int{
		payment.StatusPending:  2,
		payment.StatusApproved: 5,
	})

	require.Equal(t, 7, stats.Total)
	require.Equal(t, 2, stats.Pending)
	require.Equal(t, 5, stats.Approved)
	require.Equal(t, 0, stats.Rejected)
}

func TestBuildContentStats(t *testing.T) {
	stats := admin.BuildContentStats(map[content.Kind]int{
		content.KindCourse: 8,
		content.KindBlog:   3,
	})

	require.Equal(t, 11, stats.Total)
	require.Equal(t, 8, stats.ByKind[content.KindCourse])
	require.Equal(t, 0, stats.ByKind[content.KindTool])
	require.Equal(t, 3, stats.ByKind[content.KindBlog])
}

func TestBuildStatsEmptyInputs(t *testing.T) {
	userStats := admin.BuildUserStats(nil)
	require.Equal(t, 0, userStats.Total)
	require.Len(t, userStats.ByTier, len(tier.All()))

	paymentStats := admin.BuildPaymentStats(nil)
	require.Equal(t, 0, paymentStats.Total)

	contentStats := admin.BuildContentStats(nil)
	require.Equal(t, 0, contentStats.Total)
}
