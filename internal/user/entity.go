// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/angelamos/coursegate/internal/tier"
)

type User struct {
	ID               string     `db:"id"`
	Email            string     `db:"email"`
	PasswordHash     string     `db:"password_hash"`
	Name             string     `db:"name"`
	TelegramUsername string     `db:"telegram_username"`
	Role             string     `db:"role"`
	Tier             tier.Tier  `db:"tier"`
	TokenVersion     int        `db:"token_version"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
	DeletedAt        *time.Time `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
