// AngelaMos | 2026
// access.go

package content

import "github.com/angelamos/coursegate/internal/tier"

// Viewer is the access identity a request resolves content against. The zero
// value is anonymous: anonymous viewers never clear a tier requirement, the
// free tier included, so signing in is always part of unlocking a body.
type Viewer struct {
	Authenticated bool
	Tier          tier.Tier
}

// TierViewer is a signed-in viewer holding t.
func TierViewer(t tier.Tier) Viewer {
	return Viewer{Authenticated: true, Tier: t}
}

// Accessible reports whether the viewer may open the item. Unpublished items
// are inaccessible to everyone regardless of tier.
func Accessible(viewer Viewer, item *Item) bool {
	if item == nil || !item.Published || !viewer.Authenticated {
		return false
	}
	return tier.CanAccess(viewer.Tier, item.TierRequired)
}

// View is the presentation of an item for a specific viewer. Locked items
// keep their listing metadata and teaser but never carry the body.
type View struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	Category     string    `json:"category"`
	Teaser       string    `json:"teaser"`
	Body         string    `json:"body,omitempty"`
	TierRequired tier.Tier `json:"tier_required"`
	TierLabel    string    `json:"tier_label"`
	Locked       bool      `json:"locked"`
}

// Resolve projects an item for a viewer, withholding the body when the
// viewer does not clear the item's requirement.
func Resolve(viewer Viewer, item *Item) View {
	view := View{
		ID:           item.ID,
		Kind:         item.Kind,
		Slug:         item.Slug,
		Title:        item.Title,
		Category:     item.Category,
		Teaser:       item.Teaser,
		TierRequired: item.TierRequired,
		TierLabel:    tier.Label(item.TierRequired),
		Locked:       true,
	}

	if Accessible(viewer, item) {
		view.Locked = false
		view.Body = item.Body
	}

	return view
}
