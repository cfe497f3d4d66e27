// AngelaMos | 2026
// handler.go

package feed

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
	r.Route("/feed", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.CreatePost)
		r.Get("/", h.ListPosts)
		r.Get("/{postID}", h.GetPost)
		r.Delete("/{postID}", h.DeletePost)
		r.Post("/{postID}/like", h.ToggleLike)
		r.Get("/{postID}/likes", h.ListLikes)
		r.Post("/{postID}/comments", h.AddComment)
		r.Get("/{postID}/comments", h.ListComments)
	})

	r.Route("/comments", func(r chi.Router) {
		r.Use(authenticator)

		r.Put("/{commentID}", h.UpdateComment)
		r.Delete("/{commentID}", h.DeleteComment)
	})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	post, err := h.service.CreatePost(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToPostResponse(post))
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	skip := core.QueryInt(r, "skip", 0)
	limit := core.QueryInt(r, "limit", defaultLimit)

	posts, err := h.service.ListPosts(r.Context(), skip, limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToPostResponseList(posts))
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToPostResponse(post))
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeletePost(
		r.Context(),
		chi.URLParam(r, "postID"),
		middleware.GetUserID(r.Context()),
		middleware.IsAdmin(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.ToggleLike(
		r.Context(),
		chi.URLParam(r, "postID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, res)
}

func (h *Handler) ListLikes(w http.ResponseWriter, r *http.Request) {
	likes, err := h.service.ListLikes(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToLikeResponseList(likes))
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.AddComment(
		r.Context(),
		chi.URLParam(r, "postID"),
		middleware.GetUserID(r.Context()),
		req.Text,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.Created(w, ToCommentResponse(c))
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCommentResponseList(comments))
}

func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.UpdateComment(
		r.Context(),
		chi.URLParam(r, "commentID"),
		middleware.GetUserID(r.Context()),
		req.Text,
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.OK(w, ToCommentResponse(c))
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteComment(
		r.Context(),
		chi.URLParam(r, "commentID"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.HandleError(w, err)
		return
	}

	core.NoContent(w)
}
