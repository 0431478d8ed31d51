// AngelaMos | 2026
// entity.go

package content

import (
	"time"

	"github.com/angelamos/coursegate/internal/tier"
)

// Kind partitions the catalog into its three surfaces.
type Kind string

const (
	KindCourse Kind = "course"
	KindTool   Kind = "tool"
	KindBlog   Kind = "blog"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCourse, KindTool, KindBlog:
		return true
	}
	return false
}

type Item struct {
	ID           string    `db:"id"`
	Kind         Kind      `db:"kind"`
	Slug         string    `db:"slug"`
	Title        string    `db:"title"`
	Category     string    `db:"category"`
	Teaser       string    `db:"teaser"`
	Body         string    `db:"body"`
	TierRequired tier.Tier `db:"tier_required"`
	Published    bool      `db:"published"`
	SortOrder    int       `db:"sort_order"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
