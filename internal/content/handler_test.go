// AngelaMos | 2026
// handler_test.go

package content_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelamos/coursegate/internal/content"
	"github.com/angelamos/coursegate/internal/core"
	"github.com/angelamos/coursegate/internal/middleware"
	"github.com/angelamos/coursegate/internal/tier"
)

type fakeRepo struct {
	items []*content.Item
}

func (f *fakeRepo) Create(ctx context.Context, item *content.Item) error {
	f.items = append(f.items, item)
	return nil
}

func (f *fakeRepo) GetByID(
	ctx context.Context,
	id string,
) (*content.Item, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("get item: %w", core.ErrNotFound)
}

func (f *fakeRepo) GetBySlug(
	ctx context.Context,
	kind content.Kind,
	slug string,
) (*content.Item, error) {
	for _, item := range f.items {
		if item.Kind == kind && item.Slug == slug {
			return item, nil
		}
	}
	return nil, fmt.Errorf("get item: %w", core.ErrNotFound)
}

func (f *fakeRepo) Update(ctx context.Context, item *content.Item) error {
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeRepo) List(
	ctx context.Context,
	params content.ListItemsParams,
	includeUnpublished bool,
) ([]content.Item, int, error) {
	var out []content.Item
	for _, item := range f.items {
		if item.Kind != params.Kind {
			continue
		}
		if !includeUnpublished && !item.Published {
			continue
		}
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (f *fakeRepo) CountByKind(
	ctx context.Context,
) (map[content.Kind]int, error) {
	counts := make(map[content.Kind]int)
	for _, item := range f.items {
		counts[item.Kind]++
	}
	return counts, nil
}

func passthrough(next http.Handler) http.Handler {
	return next
}

// signedInAs mimics the optional authenticator attaching verified claims.
func signedInAs(t tier.Tier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, "u1")
			ctx = context.WithValue(ctx, middleware.UserTierKey, t)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newCatalogRouter(
	repo content.Repository,
	authn func(http.Handler) http.Handler,
) chi.Router {
	r := chi.NewRouter()
	h := content.NewHandler(content.NewService(repo))
	h.RegisterRoutes(r, authn)
	return r
}

func catalogGet(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestViewAnonymousGetsTeaserOnly(t *testing.T) {
	repo := &fakeRepo{items: []*content.Item{publishedItem(tier.Free)}}
	router := newCatalogRouter(repo, passthrough)

	rec := catalogGet(t, router, "/content/course/network-foundations")
	require.Equal(t, http.StatusOK, rec.Code)

	var view content.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.True(t, view.Locked)
	require.Empty(t, view.Body)
	require.Equal(t, "Subnets, routing, and the rest.", view.Teaser)
	require.NotContains(t, rec.Body.String(), "full course body")
}

func TestViewSignedInFreeTierUnlocksFreeItem(t *testing.T) {
	repo := &fakeRepo{items: []*content.Item{publishedItem(tier.Free)}}
	router := newCatalogRouter(repo, signedInAs(tier.Free))

	rec := catalogGet(t, router, "/content/course/network-foundations")
	require.Equal(t, http.StatusOK, rec.Code)

	var view content.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.False(t, view.Locked)
	require.Equal(t, "full course body", view.Body)
}

func TestViewSignedInBelowRequiredTierStaysLocked(t *testing.T) {
	repo := &fakeRepo{items: []*content.Item{publishedItem(tier.Tier1)}}
	router := newCatalogRouter(repo, signedInAs(tier.Free))

	rec := catalogGet(t, router, "/content/course/network-foundations")
	require.Equal(t, http.StatusOK, rec.Code)

	var view content.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.True(t, view.Locked)
	require.Empty(t, view.Body)
}

func TestBrowseAnonymousListsLockedItems(t *testing.T) {
	repo := &fakeRepo{items: []*content.Item{
		publishedItem(tier.Free),
		publishedItem(tier.Tier2),
	}}
	router := newCatalogRouter(repo, passthrough)

	rec := catalogGet(t, router, "/content/course")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp content.ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	for _, view := range resp.Items {
		require.True(t, view.Locked)
		require.Empty(t, view.Body)
		require.NotEmpty(t, view.Teaser)
	}
}
