// AngelaMos | 2026
// aggregate.go

package admin

import (
	"github.com/angelamos/coursegate/internal/content"
	"github.com/angelamos/coursegate/internal/payment"
	"github.com/angelamos/coursegate/internal/tier"
)

// PlatformStats is the admin dashboard aggregate. Each section is a pure
// projection of counts already grouped by the owning repository.
type PlatformStats struct {
	Users    UserStats    `json:"users"`
	Payments PaymentStats `json:"payments"`
	Content  ContentStats `json:"content"`
}

type UserStats struct {
	Total  int               `json:"total"`
	Paying int               `json:"paying"`
	ByTier map[tier.Tier]int `json:"by_tier"`
}

type PaymentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type ContentStats struct {
	Total  int                  `json:"total"`
	ByKind map[content.Kind]int `json:"by_kind"`
}

// BuildUserStats fills every known tier so the dashboard renders zero rows
// instead of missing ones.
func BuildUserStats(byTier map[tier.Tier]int) UserStats {
	stats := UserStats{ByTier: make(map[tier.Tier]int, len(tier.All()))}

	for _, t := range tier.All() {
		stats.ByTier[t] = byTier[t]
	}

	for t, count := range stats.ByTier {
		stats.Total += count
		if t != tier.Free {
			stats.Paying += count
		}
	}

	return stats
}

func BuildPaymentStats(byStatus map[payment.Status]int) PaymentStats {
	stats := PaymentStats{
		Pending:  byStatus[payment.StatusPending],
		Approved: byStatus[payment.StatusApproved],
		Rejected: byStatus[payment.StatusRejected],
	}
	stats.Total = stats.Pending + stats.Approved + stats.Rejected
	return stats
}

func BuildContentStats(byKind map[content.Kind]int) ContentStats {
	stats := ContentStats{
		ByKind: map[content.Kind]int{
			content.KindCourse: byKind[content.KindCourse],
			content.KindTool:   byKind[content.KindTool],
			content.KindBlog:   byKind[content.KindBlog],
		},
	}

	for _, count := range stats.ByKind {
		stats.Total += count
	}

	return stats
}
