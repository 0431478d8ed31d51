// AngelaMos | 2026
// entity.go

package payment

import (
	"time"

	"github.com/angelamos/coursegate/internal/tier"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request is a manually reviewed upgrade request: the user submits proof of
// payment out of band and an admin settles it.
type Request struct {
	ID            string     `db:"id"`
	UserID        string     `db:"user_id"`
	RequestedTier tier.Tier  `db:"requested_tier"`
	Reference     string     `db:"reference"`
	Note          string     `db:"note"`
	Status        Status     `db:"status"`
	ReviewedBy    *string    `db:"reviewed_by"`
	ReviewNote    string     `db:"review_note"`
	CreatedAt     time.Time  `db:"created_at"`
	ReviewedAt    *time.Time `db:"reviewed_at"`
}

func (r *Request) IsSettled() bool {
	return r.Status != StatusPending
}
