// AngelaMos | 2026
// handler.go

package content

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/coursegate/internal/core"
	"github.com/angelamos/coursegate/internal/middleware"
	"github.com/angelamos/coursegate/internal/tier"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the catalog. Browsing is open to anonymous viewers;
// the optional authenticator attaches tier claims when a token is present so
// paid items unlock.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	optionalAuth func(http.Handler) http.Handler,
) {
	r.Route("/content", func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/{kind}", h.Browse)
		r.Get("/{kind}/{slug}", h.View)
	})
}

// RegisterAdminRoutes mounts the management surface. The caller wraps these
// with authentication and the admin role requirement.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin/content", func(r chi.Router) {
		r.Get("/", h.ListAll)
		r.Post("/", h.Create)
		r.Get("/{itemID}", h.Get)
		r.Put("/{itemID}", h.Update)
		r.Delete("/{itemID}", h.Delete)
	})
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		core.NotFound(w, "content")
		return
	}

	params := ListItemsParams{
		Kind:     kind,
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	resp, err := h.service.BrowseItems(r.Context(), requestViewer(r), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	kind := Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		core.NotFound(w, "content")
		return
	}

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		core.BadRequest(w, "slug required")
		return
	}

	view, err := h.service.ViewItem(r.Context(), requestViewer(r), kind, slug)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "content")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, view)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	params := ListItemsParams{
		Kind:     Kind(r.URL.Query().Get("kind")),
		Category: r.URL.Query().Get("category"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	if params.Kind != "" && !params.Kind.Valid() {
		core.BadRequest(w, "invalid kind filter")
		return
	}

	items, total, err := h.service.ListAll(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, map[string]any{
		"items": items,
		"total": total,
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.CreateItem(r.Context(), req)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			core.JSONError(w, core.DuplicateError("slug"))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	resp, err := h.service.GetItem(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "content item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.UpdateItem(r.Context(), itemID, req)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "content item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if err := h.service.DeleteItem(r.Context(), itemID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "content item")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return fallback
}

// requestViewer derives the access identity from the request context. An
// anonymous request resolves everything locked; an authenticated one carries
// its tier claim, treated as free when the claim is unusable.
func requestViewer(r *http.Request) Viewer {
	if !middleware.IsAuthenticated(r.Context()) {
		return Viewer{}
	}

	t := middleware.GetUserTier(r.Context())
	if !tier.Valid(t) {
		t = tier.Free
	}
	return TierViewer(t)
}
