// AngelaMos | 2026
// service_test.go

package payment_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/core"
	"github.com/angelamos/coursegate/internal/payment"
	"github.com/angelamos/coursegate/internal/tier"
	"github.com/angelamos/coursegate/internal/user"
)

type memoryRepo struct {
	mu   sync.Mutex
	byID map[string]*payment.Request
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[string]*payment.Request)}
}

func (r *memoryRepo) Create(
	ctx context.Context,
	request *payment.Request,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *request
	r.byID[request.ID] = &stored
	return nil
}

func (r *memoryRepo) GetByID(
	ctx context.Context,
	id string,
) (*payment.Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *memoryRepo) HasPendingForUser(
	ctx context.Context,
	userID string,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.byID {
		if request.UserID == userID && request.Status == payment.StatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) Settle(
	ctx context.Context,
	request *payment.Request,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[request.ID]
	if !ok || stored.Status != payment.StatusPending {
		return core.ErrNotFound
	}
	stored.Status = request.Status
	stored.ReviewedBy = request.ReviewedBy
	stored.ReviewNote = request.ReviewNote
	return nil
}

func (r *memoryRepo) List(
	ctx context.Context,
	params payment.ListRequestsParams,
) ([]payment.Request, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []payment.Request
	for _, request := range r.byID {
		if params.Status != "" && request.Status != params.Status {
			continue
		}
		if params.UserID != "" && request.UserID != params.UserID {
			continue
		}
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (r *memoryRepo) CountByStatus(
	ctx context.Context,
) (map[payment.Status]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[payment.Status]int)
	for _, request := range r.byID {
		counts[request.Status]++
	}
	return counts, nil
}

type fakeTierUpdater struct {
	mu       sync.Mutex
	users    map[string]*user.User
	upgrades map[string]tier.Tier
}

func newFakeTierUpdater() *fakeTierUpdater {
	return &fakeTierUpdater{
		users:    make(map[string]*user.User),
		upgrades: make(map[string]tier.Tier),
	}
}

func (f *fakeTierUpdater) add(u *user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeTierUpdater) GetUser(
	ctx context.Context,
	id string,
) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return u, nil
}

func (f *fakeTierUpdater) UpdateUserTier(
	ctx context.Context,
	id string,
	newTier tier.Tier,
) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	u.Tier = newTier
	f.upgrades[id] = newTier
	return u, nil
}

func submitFor(
	t *testing.T,
	svc *payment.Service,
	userID string,
) *payment.RequestResponse {
	t.Helper()
	resp, err := svc.Submit(context.Background(), userID, payment.SubmitRequest{
		RequestedTier: "tier1",
		Reference:     "tx-1001",
	})
	require.NoError(t, err)
	return resp
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	users := newFakeTierUpdater()
	users.add(&user.User{ID: "u1", Tier: tier.Free})
	svc := payment.NewService(newMemoryRepo(), users)

	resp := submitFor(t, svc, "u1")
	require.Equal(t, payment.StatusPending, resp.Status)
	require.Equal(t, tier.Tier1, resp.RequestedTier)
}

func TestSubmitRejectsSecondPending(t *testing.T) {
	users := newFakeTierUpdater()
	users.add(&user.User{ID: "u1", Tier: tier.Free})
	svc := payment.NewService(newMemoryRepo(), users)

	submitFor(t, svc, "u1")

	_, err := svc.Submit(context.Background(), "u1", payment.SubmitRequest{
		RequestedTier: "tier2",
		Reference:     "tx-1002",
	})
	require.ErrorIs(t, err, payment.ErrPendingExists)
}

func TestSubmitRejectsDowngrade(t *testing.T) {
	users := newFakeTierUpdater()
	users.add(&user.User{ID: "u1", Tier: tier.Tier2})
	svc := payment.NewService(newMemoryRepo(), users)

	_, err := svc.Submit(context.Background(), "u1", payment.SubmitRequest{
		RequestedTier: "tier1",
		Reference:     "tx-1003",
	})
	require.ErrorIs(t, err, payment.ErrNotAnUpgrade)
}

func TestReviewApprovalUpgradesTier(t *testing.T) {
	users := newFakeTierUpdater()
	users.add(&user.User{ID: "u1", Tier: tier.Free})
	svc := payment.NewService(newMemoryRepo(), users)

	submitted := submitFor(t, svc, "u1")

	resp, err := svc.Review(
		context.Background(),
		submitted.ID,
		"admin-1",
		payment.ReviewRequest{Approve: true},
	)
	require.NoError(t, err)
	require.Equal(t, payment.StatusApproved, resp.Status)
	require.Equal(t, tier.Tier1, users.upgrades["u1"])
}

func TestReviewRejectionLeavesTier(t *testing.T) {
	users := newFakeTierUpdater()
	users.add(&user.User{ID: "u1", Tier: tier.Free})
	svc := payment.NewService(newMemoryRepo(), users)

	submitted := submitFor(t, svc, "u1")

	resp, err := svc.Review(
		context.Background(),
		submitted.ID,
		"admin-1",
		payment.ReviewRequest{Approve: false, ReviewNote: "no matching transfer"},
	)
	require.NoError(t, err)
	require.Equal(t, payment.StatusRejected, resp.Status)
	require.Empty(t, users.upgrades)
}

func TestReviewTwiceFails(t *testing.T) {
	users := newFakeTierUpdater()
	users.add(&user.User{ID: "u1", Tier: tier.Free})
	svc := payment.NewService(newMemoryRepo(), users)

	submitted := submitFor(t, svc, "u1")

	_, err := svc.Review(
		context.Background(),
		submitted.ID,
		"admin-1",
		payment.ReviewRequest{Approve: true},
	)
	require.NoError(t, err)

	_, err = svc.Review(
		context.Background(),
		submitted.ID,
		"admin-2",
		payment.ReviewRequest{Approve: false},
	)
	require.ErrorIs(t, err, payment.ErrAlreadySettled)
}

func TestCountByStatus(t *testing.T) {
	users := newFakeTierUpdater()
	users.add(&user.User{ID: "u1", Tier: tier.Free})
	users.add(&user.User{ID: "u2", Tier: tier.Free})
	svc := payment.NewService(newMemoryRepo(), users)

	first := submitFor(t, svc, "u1")
	submitFor(t, svc, "u2")

	_, err := svc.Review(
		context.Background(),
		first.ID,
		"admin-1",
		payment.ReviewRequest{Approve: true},
	)
	require.NoError(t, err)

	counts, err := svc.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, counts[payment.StatusPending])
	require.Equal(t, 1, counts[payment.StatusApproved])
}
