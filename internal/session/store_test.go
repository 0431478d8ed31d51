// AngelaMos | 2026
// store_test.go

package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/session"
	"github.com/angelamos/coursegate/internal/tier"
)

type fakeProvider struct {
	mu sync.Mutex

	remote       *session.RemoteSession
	checkErr     error
	checkBlocks  bool
	checkRelease chan struct{}
	checkCalls   int

	profiles        map[string]*session.Profile
	profileFetchErr error

	signInErr      error
	signUpErr      error
	upsertErr      error
	signOutErr     error
	signOutCalls   int
	updateCredsErr error
	upserted       []*session.Profile

	events     chan session.Event
	subscribed int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		profiles:     make(map[string]*session.Profile),
		events:       make(chan session.Event, 4),
		checkRelease: make(chan struct{}),
	}
}

func (f *fakeProvider) CheckSession(
	ctx context.Context,
) (*session.RemoteSession, error) {
	f.mu.Lock()
	f.checkCalls++
	blocks := f.checkBlocks
	f.mu.Unlock()

	if blocks {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.checkRelease:
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remote, f.checkErr
}

func (f *fakeProvider) SubscribeSessionChanges(
	ctx context.Context,
) (<-chan session.Event, func(), error) {
	f.mu.Lock()
	f.subscribed++
	f.mu.Unlock()
	return f.events, func() {}, nil
}

func (f *fakeProvider) SignIn(
	ctx context.Context,
	email, password string,
) (*session.RemoteSession, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &session.RemoteSession{UserID: "u-login", Email: email}, nil
}

func (f *fakeProvider) SignUp(
	ctx context.Context,
	email, password string,
) (*session.RemoteSession, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &session.RemoteSession{UserID: "u-new", Email: email}, nil
}

func (f *fakeProvider) BeginOAuth(
	ctx context.Context,
	provider string,
) (string, error) {
	return "https://accounts.example.com/authorize?provider=" + provider, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeProvider) UpdateCredentials(
	ctx context.Context,
	email, oldPassword, newPassword string,
) error {
	return f.updateCredsErr
}

func (f *fakeProvider) FetchProfile(
	ctx context.Context,
	id string,
) (*session.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.profileFetchErr != nil {
		return nil, f.profileFetchErr
	}
	profile, ok := f.profiles[id]
	if !ok {
		return nil, session.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProvider) UpsertProfile(
	ctx context.Context,
	profile *session.Profile,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserted = append(f.upserted, profile)
	f.profiles[profile.ID] = profile
	return nil
}

func waitForInit(t *testing.T, store *session.Store) session.Snapshot {
	t.Helper()
	require.Eventually(t, func() bool {
		return store.Snapshot().Initialized
	}, 2*time.Second, 5*time.Millisecond)
	return store.Snapshot()
}

func TestInitBindsExistingSession(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID:    "u1",
		Email: "a@b.c",
		Name:  "Alice",
		Role:  session.RoleAdmin,
		Tier:  tier.Tier2,
	}

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())

	snap := waitForInit(t, store)
	require.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)
	require.Equal(t, "Alice", snap.User.Name)
	require.Equal(t, tier.Tier2, snap.User.Tier)
	require.True(t, snap.User.IsAdmin())
}

func TestInitWithoutSessionEndsUnauthenticated(t *testing.T) {
	provider := newFakeProvider()

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())

	snap := waitForInit(t, store)
	require.False(t, snap.Authenticated)
	require.Nil(t, snap.User)
}

func TestInitFallsBackWhenProfileFetchFails(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "carol@example.com"}
	provider.profileFetchErr = errors.New("record missing")

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())

	snap := waitForInit(t, store)
	require.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)
	require.Equal(t, "carol", snap.User.Name)
	require.Equal(t, session.RoleUser, snap.User.Role)
	require.Equal(t, tier.Free, snap.User.Tier)
}

func TestInitMissingProfileRecreatesRecord(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{
		UserID: "u1",
		Email:  "carol@example.com",
	}

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())

	snap := waitForInit(t, store)
	require.True(t, snap.Authenticated)
	require.Equal(t, "carol", snap.User.Name)

	// The identity without a record is an orphan from a failed signup;
	// binding it re-upserts the fallback profile.
	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Len(t, provider.upserted, 1)
	healed := provider.upserted[0]
	require.Equal(t, "u1", healed.ID)
	require.Equal(t, "carol@example.com", healed.Email)
	require.Equal(t, "carol", healed.Name)
	require.Equal(t, session.RoleUser, healed.Role)
	require.Equal(t, tier.Free, healed.Tier)
}

func TestInitTransientProfileFailureDoesNotUpsert(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{
		UserID: "u1",
		Email:  "carol@example.com",
	}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "carol@example.com", Name: "Caroline",
		Role: session.RoleUser, Tier: tier.Tier1,
	}
	provider.profileFetchErr = errors.New("backend unreachable")

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())

	snap := waitForInit(t, store)
	require.True(t, snap.Authenticated)
	require.Equal(t, "carol", snap.User.Name)

	// A fetch that failed for reasons other than a missing record must not
	// overwrite the stored profile with derived values.
	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Empty(t, provider.upserted)
	require.Equal(t, "Caroline", provider.profiles["u1"].Name)
}

func TestInitIsIdempotent(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "a@b.c", Name: "Alice",
		Role: session.RoleUser, Tier: tier.Tier1,
	}

	store := session.NewStore(provider)
	defer store.Close()

	store.Init(context.Background())
	first := waitForInit(t, store)

	store.Init(context.Background())
	store.Init(context.Background())
	second := store.Snapshot()

	require.Equal(t, first.Initialized, second.Initialized)
	require.Equal(t, first.Authenticated, second.Authenticated)
	require.Equal(t, first.User, second.User)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Equal(t, 1, provider.checkCalls)
	require.Equal(t, 1, provider.subscribed)
}

func TestInitTimeoutForcesUnauthenticated(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "a@b.c", Name: "Alice",
		Role: session.RoleUser, Tier: tier.Tier1,
	}
	provider.checkBlocks = true

	store := session.NewStore(provider, session.WithInitTimeout(30*time.Millisecond))
	defer store.Close()
	store.Init(context.Background())

	snap := waitForInit(t, store)
	require.False(t, snap.Authenticated)
	require.Nil(t, snap.User)

	// The organic result now loses the race and must not revive the session.
	close(provider.checkRelease)
	time.Sleep(50 * time.Millisecond)

	snap = store.Snapshot()
	require.True(t, snap.Initialized)
	require.False(t, snap.Authenticated)
	require.Nil(t, snap.User)
}

func TestSessionChangeEventBindsUser(t *testing.T) {
	provider := newFakeProvider()
	provider.profiles["u9"] = &session.Profile{
		ID: "u9", Email: "oauth@example.com", Name: "Oda",
		Role: session.RoleUser, Tier: tier.Tier1,
	}

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)

	// OAuth callback resumes through the same session-change path.
	provider.events <- session.Event{
		Session: &session.RemoteSession{UserID: "u9", Email: "oauth@example.com"},
	}

	require.Eventually(t, func() bool {
		return store.Snapshot().Authenticated
	}, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, "Oda", store.CurrentUser().Name)
}

func TestExternalSignOutEventClearsSession(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "a@b.c", Name: "Alice",
		Role: session.RoleUser, Tier: tier.Tier1,
	}

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)
	require.True(t, store.Snapshot().Authenticated)

	provider.events <- session.Event{Session: nil}

	require.Eventually(t, func() bool {
		snap := store.Snapshot()
		return !snap.Authenticated && snap.User == nil
	}, 2*time.Second, 5*time.Millisecond)
	require.True(t, store.Snapshot().Initialized)
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	provider := newFakeProvider()
	provider.signInErr = session.ErrInvalidCredentials

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)

	err := store.Login(context.Background(), "a@b.c", "wrong")
	require.ErrorIs(t, err, session.ErrInvalidCredentials)

	snap := store.Snapshot()
	require.False(t, snap.Authenticated)
	require.Nil(t, snap.User)
	require.False(t, snap.Loading)
}

func TestLoginBindsUser(t *testing.T) {
	provider := newFakeProvider()
	provider.profiles["u-login"] = &session.Profile{
		ID: "u-login", Email: "a@b.c", Name: "Alice",
		Role: session.RoleAdmin, Tier: tier.Tier2,
	}

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)

	require.NoError(t, store.Login(context.Background(), "a@b.c", "secret"))

	snap := store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, session.RoleAdmin, snap.User.Role)
}

func TestSignupCreatesDefaultProfile(t *testing.T) {
	provider := newFakeProvider()

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)

	require.NoError(t, store.Signup(context.Background(), "new@b.c", "secret123", "Newbie"))

	snap := store.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "Newbie", snap.User.Name)
	require.Equal(t, session.RoleUser, snap.User.Role)
	require.Equal(t, tier.Free, snap.User.Tier)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Len(t, provider.upserted, 1)
}

func TestSignupSurfacesProfileCreationFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.upsertErr = errors.New("profile write failed")

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)

	err := store.Signup(context.Background(), "new@b.c", "secret123", "Newbie")
	require.Error(t, err)
	require.False(t, store.Snapshot().Authenticated)
}

func TestLogoutClearsLocallyBeforeRemote(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "a@b.c", Name: "Alice",
		Role: session.RoleUser, Tier: tier.Tier1,
	}
	provider.signOutErr = errors.New("backend unreachable")

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)
	require.True(t, store.Snapshot().Authenticated)

	store.Logout(context.Background())

	snap := store.Snapshot()
	require.False(t, snap.Authenticated)
	require.Nil(t, snap.User)

	provider.mu.Lock()
	defer provider.mu.Unlock()
	require.Equal(t, 1, provider.signOutCalls)
}

func TestChangePasswordWrongOldPassword(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "a@b.c", Name: "Alice",
		Role: session.RoleUser, Tier: tier.Tier1,
	}
	provider.updateCredsErr = session.ErrInvalidCredentials

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	before := waitForInit(t, store)

	err := store.ChangePassword(context.Background(), "wrong-old", "new-secret")
	require.ErrorIs(t, err, session.ErrInvalidCredentials)

	after := store.Snapshot()
	require.Equal(t, before.Authenticated, after.Authenticated)
	require.Equal(t, before.User, after.User)
}

func TestUpdateProfilePatchesCachedUser(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "a@b.c", Name: "Alice",
		Role: session.RoleUser, Tier: tier.Tier1,
	}

	store := session.NewStore(provider)
	defer store.Close()
	store.Init(context.Background())
	waitForInit(t, store)

	name := "Alice B."
	tg := "aliceb"
	err := store.UpdateProfile(context.Background(), session.ProfileUpdate{
		Name:             &name,
		TelegramUsername: &tg,
	})
	require.NoError(t, err)

	user := store.CurrentUser()
	require.Equal(t, "Alice B.", user.Name)
	require.Equal(t, "aliceb", user.TelegramUsername)
	require.Equal(t, tier.Tier1, user.Tier)
}

func TestNoMutationAfterClose(t *testing.T) {
	provider := newFakeProvider()
	provider.remote = &session.RemoteSession{UserID: "u1", Email: "a@b.c"}
	provider.profiles["u1"] = &session.Profile{
		ID: "u1", Email: "a@b.c", Name: "Alice",
		Role: session.RoleUser, Tier: tier.Tier1,
	}

	store := session.NewStore(provider)
	store.Init(context.Background())
	waitForInit(t, store)
	store.Close()

	provider.events <- session.Event{Session: nil}
	time.Sleep(30 * time.Millisecond)

	snap := store.Snapshot()
	require.True(t, snap.Authenticated, "event after teardown must not mutate state")

	err := store.Login(context.Background(), "a@b.c", "pw")
	require.ErrorIs(t, err, session.ErrStoreClosed)
}
