// AngelaMos | 2026
// sessionbridge.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/angelamos/coursegate/internal/config"
	"github.com/angelamos/coursegate/internal/core"
	"github.com/angelamos/coursegate/internal/session"
)

// Backend is the slice of the auth service the session bridge consumes.
type Backend interface {
	Login(
		ctx context.Context,
		req LoginRequest,
		userAgent, ipAddress string,
	) (*AuthResponse, error)
	Register(
		ctx context.Context,
		req RegisterRequest,
		userAgent, ipAddress string,
	) (*AuthResponse, error)
	Logout(ctx context.Context, refreshToken, userID string) error
	SessionFromRefreshToken(
		ctx context.Context,
		refreshToken string,
	) (*UserInfo, error)
	ChangePassword(
		ctx context.Context,
		userID, currentPassword, newPassword string,
	) error
	GetProfile(ctx context.Context, id string) (*UserInfo, error)
}

// ProfileStore is the profile-record slice of the user service.
type ProfileStore interface {
	UpsertProfile(
		ctx context.Context,
		id, email, name, telegramUsername string,
	) (*UserInfo, error)
}

// SessionBridge adapts the platform backend to the session.Provider
// capability interface. One bridge serves one device: it keeps the device's
// refresh token, and session-change events reach it on the device channel,
// so OAuth callbacks and remote sign-outs flow through the same transition
// path as the startup check.
type SessionBridge struct {
	backend  Backend
	profiles ProfileStore
	bus      EventBus
	oauth    config.OAuthConfig
	deviceID string

	mu           sync.Mutex
	refreshToken string
	userID       string
}

func NewSessionBridge(
	backend Backend,
	profiles ProfileStore,
	bus EventBus,
	oauth config.OAuthConfig,
	deviceID string,
) *SessionBridge {
	return &SessionBridge{
		backend:  backend,
		profiles: profiles,
		bus:      bus,
		oauth:    oauth,
		deviceID: deviceID,
	}
}

func (b *SessionBridge) DeviceID() string {
	return b.deviceID
}

func (b *SessionBridge) CheckSession(
	ctx context.Context,
) (*session.RemoteSession, error) {
	b.mu.Lock()
	token := b.refreshToken
	b.mu.Unlock()

	if token == "" {
		return nil, nil
	}

	user, err := b.backend.SessionFromRefreshToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if user == nil {
		b.clear()
		return nil, nil
	}

	b.remember(token, user.ID)
	return &session.RemoteSession{UserID: user.ID, Email: user.Email}, nil
}

func (b *SessionBridge) SubscribeSessionChanges(
	ctx context.Context,
) (<-chan session.Event, func(), error) {
	raw, cancel, err := b.bus.Subscribe(ctx, b.deviceID)
	if err != nil {
		return nil, nil, err
	}

	events := make(chan session.Event)
	go func() {
		defer close(events)
		for ev := range raw {
			var out session.Event
			if ev.SignedIn {
				out.Session = &session.RemoteSession{
					UserID: ev.UserID,
					Email:  ev.Email,
				}
			} else {
				b.clear()
			}

			select {
			case events <- out:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, cancel, nil
}

func (b *SessionBridge) SignIn(
	ctx context.Context,
	email, password string,
) (*session.RemoteSession, error) {
	resp, err := b.backend.Login(
		ctx,
		LoginRequest{Email: email, Password: password},
		"", "",
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return nil, session.ErrInvalidCredentials
		}
		return nil, err
	}

	b.remember(resp.Tokens.RefreshToken, resp.User.ID)
	return &session.RemoteSession{
		UserID: resp.User.ID,
		Email:  resp.User.Email,
	}, nil
}

// SignUp creates the backend identity only; the profile record follows as a
// separate UpsertProfile call from the session store, mirroring the
// identity-then-profile split of the signup contract.
func (b *SessionBridge) SignUp(
	ctx context.Context,
	email, password string,
) (*session.RemoteSession, error) {
	resp, err := b.backend.Register(
		ctx,
		RegisterRequest{Email: email, Password: password, Name: email},
		"", "",
	)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, session.ErrDuplicateAccount
		}
		return nil, err
	}

	b.remember(resp.Tokens.RefreshToken, resp.User.ID)
	return &session.RemoteSession{
		UserID: resp.User.ID,
		Email:  resp.User.Email,
	}, nil
}

func (b *SessionBridge) BeginOAuth(
	ctx context.Context,
	provider string,
) (string, error) {
	if provider != "google" {
		return "", fmt.Errorf("begin oauth: unsupported provider %q", provider)
	}
	if b.oauth.GoogleAuthURL == "" || b.oauth.GoogleClientID == "" {
		return "", fmt.Errorf("begin oauth: %w", core.ErrUnavailable)
	}

	query := url.Values{}
	query.Set("client_id", b.oauth.GoogleClientID)
	query.Set("redirect_uri", b.oauth.RedirectURL)
	query.Set("response_type", "code")
	query.Set("scope", "openid email profile")
	query.Set("state", b.deviceID)

	return b.oauth.GoogleAuthURL + "?" + query.Encode(), nil
}

func (b *SessionBridge) SignOut(ctx context.Context) error {
	b.mu.Lock()
	token := b.refreshToken
	userID := b.userID
	b.refreshToken = ""
	b.userID = ""
	b.mu.Unlock()

	if token == "" {
		return nil
	}

	if err := b.backend.Logout(ctx, token, userID); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (b *SessionBridge) UpdateCredentials(
	ctx context.Context,
	email, oldPassword, newPassword string,
) error {
	b.mu.Lock()
	userID := b.userID
	b.mu.Unlock()

	if userID == "" {
		return session.ErrNotAuthenticated
	}

	err := b.backend.ChangePassword(ctx, userID, oldPassword, newPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return session.ErrInvalidCredentials
		}
		return err
	}
	return nil
}

func (b *SessionBridge) FetchProfile(
	ctx context.Context,
	id string,
) (*session.Profile, error) {
	user, err := b.backend.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, session.ErrProfileNotFound
		}
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	return &session.Profile{
		ID:               user.ID,
		Email:            user.Email,
		Name:             user.Name,
		TelegramUsername: user.TelegramUsername,
		Role:             user.Role,
		Tier:             user.Tier,
	}, nil
}

func (b *SessionBridge) UpsertProfile(
	ctx context.Context,
	profile *session.Profile,
) error {
	_, err := b.profiles.UpsertProfile(
		ctx,
		profile.ID,
		profile.Email,
		profile.Name,
		profile.TelegramUsername,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (b *SessionBridge) remember(refreshToken, userID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshToken = refreshToken
	b.userID = userID
}

func (b *SessionBridge) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshToken = ""
	b.userID = ""
}

var _ session.Provider = (*SessionBridge)(nil)
