// AngelaMos | 2026
// handler.go

package membership

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
	r.Route("/membership-requests", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/owner", h.ListByOwner)
		r.Post("/{requestID}/respond", h.Respond)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	created, err := h.service.CreateMembershipRequest(
		r.Context(),
		req.ThreadID,
		middleware.GetUserID(r.Context()),
		req.Message,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToRequestResponse(created))
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

	ctx := r.Context()
	res, err := h.service.RespondToMembershipRequest(ctx, RespondInput{
		RequestID:       chi.URLParam(r, "requestID"),
		ThreadID:        req.ThreadID,
		ResponderID:     middleware.GetUserID(ctx),
		Accept:          *req.Accept,
		ResponseMessage: req.ResponseMessage,
		Admin:           middleware.IsAdmin(ctx),
	})
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, res)
}

// ListByOwner defaults to the caller's own email. Admins may pass
// ?email= to look at another owner.
func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := middleware.GetUserEmail(ctx)

	if q := r.URL.Query().Get("email"); q != "" && !strings.EqualFold(q, email) {
		if !middleware.IsAdmin(ctx) {
			core.Forbidden(w, "cannot list requests for another owner")
			return
		}
		email = q
	}

	views, err := h.service.ListByOwnerEmail(ctx, email)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToViewList(views))
}
