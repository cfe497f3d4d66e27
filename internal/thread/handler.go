// AngelaMos | 2026
// handler.go

package thread

import (
	"context"
	"encoding/json"
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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/threads", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/owner/{ownerID}", h.ListByOwner)
		r.Get("/member/{memberID}", h.ListByMember)

		r.Route("/{threadID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/members", h.AddMembers)
			r.Delete("/members", h.RemoveMembers)
			r.Post("/join", h.Join)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.CreateThread(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToThreadResponse(t))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := core.PageFromRequest(r)

	rows, total, err := h.service.ListThreads(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToSummaryList(rows), params.Page, params.PageSize, total)
}

func (h *Handler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListByOwner(r.Context(), chi.URLParam(r, "ownerID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToSummaryList(rows))
}

func (h *Handler) ListByMember(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListByMember(r.Context(), chi.URLParam(r, "memberID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToSummaryList(rows))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetThread(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToDetailResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if !h.authorize(w, r, threadID) {
		return
	}

	var req UpdateThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	t, err := h.service.UpdateThread(r.Context(), threadID, req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToThreadResponse(t))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	threadID := chi.URLParam(r, "threadID")
	if !h.authorize(w, r, threadID) {
		return
	}

	if err := h.service.DeleteThread(r.Context(), threadID); err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.service.AddMembers)
}

func (h *Handler) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.service.RemoveMembers)
}

type memberChange func(ctx context.Context, threadID string, ids []string) (*Detail, error)

func (h *Handler) changeMembers(
	w http.ResponseWriter,
	r *http.Request,
	apply memberChange,
) {
	threadID := chi.URLParam(r, "threadID")
	if !h.authorize(w, r, threadID) {
		return
	}

	var req MembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	d, err := apply(r.Context(), threadID, req.MemberIDs)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToDetailResponse(d))
}

// Join adds the caller to the thread, as after scanning its QR code.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.AddMemberToThread(
		r.Context(),
		chi.URLParam(r, "threadID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, res)
}

// authorize admits the thread owner and admins. It writes the error
// response itself and reports whether the request may continue.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, threadID string) bool {
	if middleware.IsAdmin(r.Context()) {
		return true
	}

	if _, err := h.service.RequireOwner(r.Context(), threadID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err)
		return false
	}

	return true
}
