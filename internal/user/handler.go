// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts the self-service and profile lookups.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/users", func(r chi.Router) {
		r.Use(authenticator)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.GetMe)
			r.Put("/", h.UpdateMe)
			r.Delete("/", h.DeleteMe)
		})
		r.Get("/search", h.Search)
		r.Get("/{userID}", h.GetProfile)
	})
}

// RegisterAdminRoutes mounts account management for admins.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.ListUsers)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Put("/role", h.UpdateUserRole)
			r.Put("/status", h.UpdateUserStatus)
			r.Delete("/", h.DeleteUser)
		})
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	respondUser(w, u, err)
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[UpdateUserRequest](h.validator, w, r)
	if !ok {
		return
	}

	u, err := h.service.UpdateMe(r.Context(), middleware.GetUserID(r.Context()), req)
	respondUser(w, u, err)
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteMe(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToPublicUserList(users))
}

// GetProfile exposes the public card only; email and phone stay private.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.OK(w, PublicUser{ID: u.ID, FullName: u.FullName, Avatar: u.Avatar})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		PageParams: core.PageFromRequest(r),
		Search:     q.Get("search"),
		Role:       q.Get("role"),
	}
	if params.Role != "" && !ValidRole(params.Role) {
		core.BadRequest(w, "unknown role filter")
		return
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userID"))
	respondUser(w, u, err)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[UpdateUserRequest](h.validator, w, r)
	if !ok {
		return
	}

	u, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "userID"), req)
	respondUser(w, u, err)
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[UpdateUserRoleRequest](h.validator, w, r)
	if !ok {
		return
	}

	u, err := h.service.UpdateUserRole(r.Context(), chi.URLParam(r, "userID"), req.Role)
	respondUser(w, u, err)
}

func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeValid[UpdateUserStatusRequest](h.validator, w, r)
	if !ok {
		return
	}

	u, err := h.service.UpdateUserStatus(r.Context(), chi.URLParam(r, "userID"), req.Status)
	respondUser(w, u, err)
}

// DeleteUser soft deletes an account. Admin accounts cannot be removed
// by another admin.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := chi.URLParam(r, "userID")

	err := h.service.CanDeleteUser(ctx, middleware.GetUserID(ctx), targetID)
	if err == nil {
		err = h.service.DeleteUser(ctx, targetID)
	}
	if err != nil {
		writeUserError(w, err)
		return
	}

	core.NoContent(w)
}

func decodeValid[T any](v *validator.Validate, w http.ResponseWriter, r *http.Request) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}
	if err := v.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}
	return req, true
}

func respondUser(w http.ResponseWriter, u *User, err error) {
	if err != nil {
		writeUserError(w, err)
		return
	}
	core.OK(w, ToUserResponse(u))
}

func writeUserError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) && !core.IsAppError(err) {
		core.NotFound(w, "user")
		return
	}
	core.HandleError(w, err)
}
