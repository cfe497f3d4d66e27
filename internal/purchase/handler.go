// AngelaMos | 2026
// handler.go

package purchase

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
	r.Route("/purchase-requests", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/bead/{beadID}", h.ListByBead)
		r.Get("/thread/{threadID}", h.ListByThread)
		r.Get("/buyer/{email}", h.ListByBuyer)
		r.Post("/{requestID}/respond", h.Respond)
		r.Post("/{requestID}/cancel", h.Cancel)
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

	res, err := h.service.CreatePurchaseRequest(r.Context(), CreateInput{
		ThreadID:   req.ThreadID,
		BeadID:     req.BeadID,
		BuyerID:    middleware.GetUserID(r.Context()),
		OfferPrice: req.OfferPrice,
		Message:    req.Message,
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

	ctx := r.Context()
	res, err := h.service.RespondToPurchaseRequest(ctx, RespondInput{
		RequestID:       chi.URLParam(r, "requestID"),
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

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.CancelPurchaseRequest(
		r.Context(),
		chi.URLParam(r, "requestID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToRequestResponse(req))
}

func (h *Handler) ListByBead(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListByBead(r.Context(), chi.URLParam(r, "beadID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToViewList(views))
}

func (h *Handler) ListByThread(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListByThread(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToViewList(views))
}

func (h *Handler) ListByBuyer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := chi.URLParam(r, "email")

	if !middleware.IsAdmin(ctx) && !strings.EqualFold(email, middleware.GetUserEmail(ctx)) {
		core.Forbidden(w, "cannot list offers for another buyer")
		return
	}

	views, err := h.service.ListByBuyerEmail(ctx, email)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToViewList(views))
}
