// AngelaMos | 2026
// provider.go

package session

import (
	"context"
	"errors"

	"github.com/angelamos/coursegate/internal/tier"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrStoreClosed        = errors.New("session store closed")
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity the store caches for the lifetime of a session.
// It is a transient copy; the profile record itself is owned by the backend.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	Role             string    `json:"role"`
	Tier             tier.Tier `json:"tier"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RemoteSession is the raw identity reported by the backend session check,
// before the profile record has been fetched.
type RemoteSession struct {
	UserID string
	Email  string
}

// Event is one session-change notification. A nil Session means the backend
// signed the user out; a non-nil Session carries the new identity. OAuth
// callbacks resume through this same path.
type Event struct {
	Session *RemoteSession
}

// Profile is the full backend profile record.
type Profile struct {
	ID               string
	Email            string
	Name             string
	TelegramUsername string
	Role             string
	Tier             tier.Tier
}

// ProfileUpdate carries the mutable display attributes. Nil fields are
// left unchanged.
type ProfileUpdate struct {
	Name             *string
	TelegramUsername *string
}

// Provider is the capability interface the backend collaborator implements.
// The store is the only consumer; it never reaches past this boundary.
type Provider interface {
	// CheckSession reports the current remote session, or nil when none exists.
	CheckSession(ctx context.Context) (*RemoteSession, error)

	// SubscribeSessionChanges yields session-change events until cancel is
	// called or ctx is done. The store reacts to each event with the same
	// transition logic as the startup check.
	SubscribeSessionChanges(
		ctx context.Context,
	) (<-chan Event, func(), error)

	// SignIn verifies credentials and establishes a remote session.
	// Returns ErrInvalidCredentials on rejection.
	SignIn(ctx context.Context, email, password string) (*RemoteSession, error)

	// SignUp creates a backend identity. Returns ErrDuplicateAccount when the
	// email is taken. Profile creation is a separate UpsertProfile call.
	SignUp(ctx context.Context, email, password string) (*RemoteSession, error)

	// BeginOAuth starts an external OAuth redirect flow and returns the
	// authorization URL. The callback resumes via SubscribeSessionChanges.
	BeginOAuth(ctx context.Context, provider string) (string, error)

	// SignOut invalidates the remote session.
	SignOut(ctx context.Context) error

	// UpdateCredentials re-authenticates with oldPassword before applying
	// newPassword. Returns ErrInvalidCredentials when oldPassword is wrong.
	UpdateCredentials(
		ctx context.Context,
		email, oldPassword, newPassword string,
	) error

	// FetchProfile loads the profile record for an identity. Returns
	// ErrProfileNotFound when the identity exists but no record does.
	FetchProfile(ctx context.Context, id string) (*Profile, error)

	// UpsertProfile creates or replaces a profile record.
	UpsertProfile(ctx context.Context, profile *Profile) error
}
