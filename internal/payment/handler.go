// AngelaMos | 2026
// handler.go

package payment

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/angelamos/coursegate/internal/core"
	"github.com/angelamos/coursegate/internal/middleware"
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

// RegisterRoutes mounts the member-facing payment surface; the caller wraps
// it with authentication.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payments", func(r chi.Router) {
		r.Post("/", h.Submit)
		r.Get("/", h.ListMine)
	})
}

// RegisterAdminRoutes mounts the review surface; the caller wraps it with
// authentication and the admin role requirement.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/admin/payments", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{requestID}", h.Get)
		r.Post("/{requestID}/review", h.Review)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Submit(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPendingExists):
			core.JSONError(w, core.NewAppError(
				err,
				"a payment request is already awaiting review",
				http.StatusConflict,
				"PAYMENT_PENDING",
			))
		case errors.Is(err, ErrNotAnUpgrade):
			core.BadRequest(w, "requested tier must be above the current tier")
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, "invalid requested tier")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, resp)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		core.Unauthorized(w, "")
		return
	}

	resp, err := h.service.ListForUser(
		r.Context(),
		userID,
		queryInt(r, "page", 1),
		queryInt(r, "page_size", 20),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListRequestsParams{
		Status:   Status(r.URL.Query().Get("status")),
		UserID:   r.URL.Query().Get("user_id"),
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "page_size", 20),
	}

	if params.Status != "" && !params.Status.Valid() {
		core.BadRequest(w, "invalid status filter")
		return
	}

	resp, err := h.service.ListRequests(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	resp, err := h.service.GetRequest(r.Context(), requestID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "payment request")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	reviewerID := middleware.GetUserID(r.Context())
	if reviewerID == "" {
		core.Unauthorized(w, "")
		return
	}

	requestID := chi.URLParam(r, "requestID")

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Review(r.Context(), requestID, reviewerID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "payment request")
		case errors.Is(err, ErrAlreadySettled):
			core.JSONError(w, core.NewAppError(
				err,
				"payment request already settled",
				http.StatusConflict,
				"PAYMENT_SETTLED",
			))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.OK(w, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return fallback
}
