// AngelaMos | 2026
// handler.go

package bead

import (
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
	r.Route("/beads", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/thread/{threadID}", h.ListByThread)

		r.Route("/{beadID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/images", h.AddImages)
		})
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	b, err := h.service.CreateBead(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToBeadResponse(b))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := core.PageFromRequest(r)

	rows, total, err := h.service.ListBeads(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Paginated(w, ToSummaryList(rows), params.Page, params.PageSize, total)
}

func (h *Handler) ListByThread(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ListByThread(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToSummaryList(rows))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBead(r.Context(), chi.URLParam(r, "beadID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToBeadResponse(b))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	beadID := chi.URLParam(r, "beadID")
	if !h.authorize(w, r, beadID) {
		return
	}

	var req UpdateBeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	b, err := h.service.UpdateBead(r.Context(), beadID, req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToBeadResponse(b))
}

func (h *Handler) AddImages(w http.ResponseWriter, r *http.Request) {
	beadID := chi.URLParam(r, "beadID")
	if !h.authorize(w, r, beadID) {
		return
	}

	var req ImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	b, err := h.service.AddImages(r.Context(), beadID, req.Images)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToBeadResponse(b))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	beadID := chi.URLParam(r, "beadID")
	if !h.authorize(w, r, beadID) {
		return
	}

	if err := h.service.DeleteBead(r.Context(), beadID); err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, beadID string) bool {
	if middleware.IsAdmin(r.Context()) {
		return true
	}

	if _, err := h.service.RequireOwner(r.Context(), beadID, middleware.GetUserID(r.Context())); err != nil {
		core.HandleError(w, err)
		return false
	}

	return true
}
