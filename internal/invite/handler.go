// AngelaMos | 2026
// handler.go

package invite

import (
	"encoding/json"
	"net/http"
	"strings"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/invites", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/token/{token}", h.ResolveToken)
		r.Get("/email/{email}", h.ListByEmail)
		r.Post("/{inviteID}/respond", h.Respond)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	ctx := r.Context()
	res, err := h.service.CreateInvite(ctx, CreateInput{
		ThreadID:  req.ThreadID,
		InviterID: middleware.GetUserID(ctx),
		Email:     req.Email,
		Admin:     middleware.IsAdmin(ctx),
	})
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, res)
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	res, err := h.service.RespondToInvite(
		r.Context(),
		chi.URLParam(r, "inviteID"),
		middleware.GetUserID(r.Context()),
		*req.Accept,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, res)
}

func (h *Handler) ResolveToken(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.ResolveToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToInviteResponse(inv, h.service.Now()))
}

// ListByEmail shows pending invites. Callers only see their own unless
// they are an admin.
func (h *Handler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := chi.URLParam(r, "email")

	if !middleware.IsAdmin(ctx) && !strings.EqualFold(email, middleware.GetUserEmail(ctx)) {
		core.Forbidden(w, "cannot list invites for another address")
		return
	}

	invites, err := h.service.ListByEmail(ctx, email)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToInviteResponseList(invites, h.service.Now()))
}
