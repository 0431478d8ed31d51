// AngelaMos | 2026
// store.go

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const DefaultInitTimeout = 15 * time.Second

// Store holds the process-wide session state: the cached identity plus the
// initialized/authenticated/loading flags the view layer reads. It is created
// once at application startup and torn down with Close.
//
// Initialization runs exactly once. The startup check and the init timeout
// race for a single claim-once token; whichever claims it first completes
// initialization and the loser no-ops, so a late backend response can never
// revive a session the timeout already declared logged out.
type Store struct {
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger

	mu            sync.Mutex
	initialized   bool
	authenticated bool
	loading       bool
	currentUser   *User
	closed        bool

	initOnce     sync.Once
	startupDone  atomic.Bool
	initTimer    *time.Timer
	cancelEvents context.CancelFunc
}

type Option func(*Store)

func WithInitTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func NewStore(provider Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		timeout:  DefaultInitTimeout,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Snapshot is a consistent read of the store's observable state.
type Snapshot struct {
	Initialized   bool
	Authenticated bool
	Loading       bool
	User          *User
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Initialized:   s.initialized,
		Authenticated: s.authenticated,
		Loading:       s.loading,
		User:          s.currentUser,
	}
}

func (s *Store) CurrentUser() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentUser
}

// Init subscribes to session-change events and issues the one startup check.
// Repeated or concurrent calls are no-ops against an already-initializing or
// already-initialized store.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.mu.Lock()
		s.cancelEvents = cancel
		s.mu.Unlock()

		events, unsubscribe, err := s.provider.SubscribeSessionChanges(runCtx)
		if err != nil {
			s.logger.Warn("session: subscribe failed, startup check only",
				"error", err,
			)
		} else {
			go func() {
				defer unsubscribe()
				for {
					select {
					case <-runCtx.Done():
						return
					case ev, ok := <-events:
						if !ok {
							return
						}
						s.handleSessionChange(runCtx, ev.Session)
					}
				}
			}()
		}

		s.mu.Lock()
		s.initTimer = time.AfterFunc(s.timeout, func() {
			if s.completeStartup(runCtx, nil) {
				s.logger.Warn("session: init timed out, forcing unauthenticated",
					"timeout", s.timeout,
				)
			}
		})
		s.mu.Unlock()

		go func() {
			remote, checkErr := s.provider.CheckSession(runCtx)
			if checkErr != nil {
				if !errors.Is(checkErr, context.Canceled) {
					s.logger.Warn("session: startup check failed",
						"error", checkErr,
					)
				}
				s.completeStartup(runCtx, nil)
				return
			}
			s.completeStartup(runCtx, remote)
		}()
	})
}

// Close tears down the subscription and init timer. No state mutation
// happens after Close returns.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.initTimer != nil {
		s.initTimer.Stop()
	}
	if s.cancelEvents != nil {
		s.cancelEvents()
	}
}

// completeStartup is the claim-once completion of initialization. It returns
// false when another path (organic result, timeout, or an earlier
// session-change event) already claimed completion.
func (s *Store) completeStartup(
	ctx context.Context,
	remote *RemoteSession,
) bool {
	if !s.startupDone.CompareAndSwap(false, true) {
		return false
	}

	s.stopInitTimer()
	s.transition(ctx, remote)
	return true
}

// handleSessionChange reacts to a session-change event. An event arriving
// before the startup check resolves supersedes the pending check: it claims
// the completion token so the stale check result is discarded on arrival.
func (s *Store) handleSessionChange(
	ctx context.Context,
	remote *RemoteSession,
) {
	if s.startupDone.CompareAndSwap(false, true) {
		s.stopInitTimer()
	}
	s.transition(ctx, remote)
}

func (s *Store) stopInitTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initTimer != nil {
		s.initTimer.Stop()
	}
}

// transition is the single state-transition function shared by the startup
// check and session-change events. A nil remote session lands in the
// unauthenticated state; a valid one binds the fetched (or fallback) profile.
// Either way the store ends initialized.
func (s *Store) transition(ctx context.Context, remote *RemoteSession) {
	var user *User
	if remote != nil {
		user = s.resolveProfile(ctx, remote)
	}
	s.bind(user)
}

func (s *Store) bind(user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.currentUser = user
	s.authenticated = user != nil
	s.initialized = true
}

// resolveProfile fetches the full profile record for a remote session. When
// the fetch fails the store falls back to a minimal identity derived from the
// raw session so that initialization completes even without secondary data.
// A missing record is recreated from that fallback: this is the orphan left
// by a signup whose profile write failed after the identity existed.
func (s *Store) resolveProfile(
	ctx context.Context,
	remote *RemoteSession,
) *User {
	profile, err := s.provider.FetchProfile(ctx, remote.UserID)
	if err != nil {
		user := fallbackUser(remote)
		if errors.Is(err, ErrProfileNotFound) {
			s.healProfile(ctx, user)
		} else {
			s.logger.Warn("session: profile fetch failed, using fallback identity",
				"user_id", remote.UserID,
				"error", err,
			)
		}
		return user
	}

	return &User{
		ID:               profile.ID,
		Email:            profile.Email,
		Name:             profile.Name,
		TelegramUsername: profile.TelegramUsername,
		Role:             profile.Role,
		Tier:             profile.Tier,
	}
}

// healProfile recreates a missing profile record from the fallback identity.
// Only the confirmed-missing case reaches here, never a transient fetch
// failure, so an existing record's attributes are never overwritten with
// derived values.
func (s *Store) healProfile(ctx context.Context, user *User) {
	profile := &Profile{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		Tier:  user.Tier,
	}

	if err := s.provider.UpsertProfile(ctx, profile); err != nil {
		s.logger.Warn("session: profile heal failed",
			"user_id", user.ID,
			"error", err,
		)
		return
	}

	s.logger.Info("session: recreated missing profile record",
		"user_id", user.ID,
	)
}

func fallbackUser(remote *RemoteSession) *User {
	return &User{
		ID:    remote.UserID,
		Email: remote.Email,
		Name:  displayNameFromEmail(remote.Email),
		Role:  RoleUser,
		Tier:  "free",
	}
}

func displayNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// Login verifies credentials and binds the session. The rejection reason is
// returned verbatim; authentication state is untouched on failure.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := s.beginMutation(); err != nil {
		return err
	}
	defer s.endMutation()

	remote, err := s.provider.SignIn(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.markStartupDone()
	s.transition(ctx, remote)
	return nil
}

// Signup creates a backend identity and then its profile record. When the
// profile write fails after the identity exists, the failure is surfaced and
// the orphaned identity heals on the next valid session event, which falls
// back to a minimal profile and re-upserts.
func (s *Store) Signup(ctx context.Context, email, password, name string) error {
	if err := s.beginMutation(); err != nil {
		return err
	}
	defer s.endMutation()

	remote, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}

	profile := &Profile{
		ID:    remote.UserID,
		Email: remote.Email,
		Name:  name,
		Role:  RoleUser,
		Tier:  "free",
	}

	if err := s.provider.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("signup: create profile: %w", err)
	}

	s.markStartupDone()
	s.bind(&User{
		ID:    profile.ID,
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
		Tier:  profile.Tier,
	})
	return nil
}

// SignInWithGoogle starts the OAuth redirect flow and returns the
// authorization URL. The store takes no further part: the provider's
// callback lands on the session-change subscription and binds through the
// same transition as the startup check.
func (s *Store) SignInWithGoogle(ctx context.Context) (string, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return "", ErrStoreClosed
	}

	url, err := s.provider.BeginOAuth(ctx, "google")
	if err != nil {
		return "", fmt.Errorf("sign in with google: %w", err)
	}
	return url, nil
}

// Logout clears local state immediately and then asks the backend to
// invalidate the remote session. The remote call is best-effort: an
// unreachable backend never prevents local logout.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.currentUser = nil
	s.authenticated = false
	s.mu.Unlock()

	s.markStartupDone()

	if err := s.provider.SignOut(ctx); err != nil {
		s.logger.Warn("session: remote sign-out failed", "error", err)
	}
}

// UpdateProfile writes the changed display attributes to the backend and, on
// success, patches the cached user so the view reflects the change without a
// re-fetch.
func (s *Store) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	s.mu.Lock()
	current := s.currentUser
	s.mu.Unlock()

	if current == nil {
		return ErrNotAuthenticated
	}

	if err := s.beginMutation(); err != nil {
		return err
	}
	defer s.endMutation()

	profile := &Profile{
		ID:               current.ID,
		Email:            current.Email,
		Name:             current.Name,
		TelegramUsername: current.TelegramUsername,
		Role:             current.Role,
		Tier:             current.Tier,
	}
	if update.Name != nil {
		profile.Name = *update.Name
	}
	if update.TelegramUsername != nil {
		profile.TelegramUsername = *update.TelegramUsername
	}

	if err := s.provider.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.currentUser == nil || s.currentUser.ID != profile.ID {
		return nil
	}
	updated := *s.currentUser
	updated.Name = profile.Name
	updated.TelegramUsername = profile.TelegramUsername
	s.currentUser = &updated
	return nil
}

// ChangePassword re-authenticates with the old password before applying the
// new one. Local session state is untouched either way.
func (s *Store) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	s.mu.Lock()
	current := s.currentUser
	s.mu.Unlock()

	if current == nil {
		return ErrNotAuthenticated
	}

	if err := s.beginMutation(); err != nil {
		return err
	}
	defer s.endMutation()

	err := s.provider.UpdateCredentials(ctx, current.Email, oldPassword, newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	return nil
}

// markStartupDone retires the pending startup check after an explicit user
// action has already decided the session state.
func (s *Store) markStartupDone() {
	if s.startupDone.CompareAndSwap(false, true) {
		s.stopInitTimer()
	}
}

func (s *Store) beginMutation() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	s.loading = true
	return nil
}

func (s *Store) endMutation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}
