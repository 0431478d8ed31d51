// AngelaMos | 2026
// access_test.go

package content_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/content"
	"github.com/angelamos/coursegate/internal/tier"
)

func publishedItem(required tier.Tier) *content.Item {
	return &content.Item{
		ID:           "c1",
		Kind:         content.KindCourse,
		Slug:         "network-foundations",
		Title:        "Network Foundations",
		Teaser:       "Subnets, routing, and the rest.",
		Body:         "full course body",
		TierRequired: required,
		Published:    true,
	}
}

func TestAccessibleByTier(t *testing.T) {
	cases := []struct {
		name     string
		viewer   tier.Tier
		required tier.Tier
		want     bool
	}{
		{"free viewer free item", tier.Free, tier.Free, true},
		{"free viewer tier1 item", tier.Free, tier.Tier1, false},
		{"free viewer tier2 item", tier.Free, tier.Tier2, false},
		{"tier1 viewer free item", tier.Tier1, tier.Free, true},
		{"tier1 viewer tier1 item", tier.Tier1, tier.Tier1, true},
		{"tier1 viewer tier2 item", tier.Tier1, tier.Tier2, false},
		{"tier2 viewer tier2 item", tier.Tier2, tier.Tier2, true},
		{"tier2 viewer tier1 item", tier.Tier2, tier.Tier1, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := publishedItem(tc.required)
			viewer := content.TierViewer(tc.viewer)
			require.Equal(t, tc.want, content.Accessible(viewer, item))
		})
	}
}

func TestAnonymousNeverAccessible(t *testing.T) {
	anonymous := content.Viewer{}

	for _, required := range tier.All() {
		item := publishedItem(required)
		require.False(t, content.Accessible(anonymous, item),
			"anonymous viewer must not access %s items", required)
	}
}

func TestUnpublishedNeverAccessible(t *testing.T) {
	item := publishedItem(tier.Free)
	item.Published = false

	require.False(t, content.Accessible(content.TierViewer(tier.Free), item))
	require.False(t, content.Accessible(content.TierViewer(tier.Tier2), item))
}

func TestAccessibleNilItem(t *testing.T) {
	require.False(t, content.Accessible(content.TierViewer(tier.Tier2), nil))
}

func TestAccessibleInvalidViewerTier(t *testing.T) {
	item := publishedItem(tier.Free)
	viewer := content.TierViewer(tier.Tier("platinum"))
	require.False(t, content.Accessible(viewer, item))
}

func TestResolveUnlockedCarriesBody(t *testing.T) {
	item := publishedItem(tier.Tier1)

	view := content.Resolve(content.TierViewer(tier.Tier1), item)
	require.False(t, view.Locked)
	require.Equal(t, "full course body", view.Body)
	require.Equal(t, tier.Tier1, view.TierRequired)
}

func TestResolveLockedWithholdsBody(t *testing.T) {
	item := publishedItem(tier.Tier2)

	view := content.Resolve(content.TierViewer(tier.Free), item)
	require.True(t, view.Locked)
	require.Empty(t, view.Body)
	require.Equal(t, "Subnets, routing, and the rest.", view.Teaser)
	require.Equal(t, "Network Foundations", view.Title)
}

func TestResolveAnonymousLockedOnFreeItem(t *testing.T) {
	item := publishedItem(tier.Free)

	view := content.Resolve(content.Viewer{}, item)
	require.True(t, view.Locked)
	require.Empty(t, view.Body)
	require.Equal(t, "Subnets, routing, and the rest.", view.Teaser)
}
