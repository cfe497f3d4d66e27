// AngelaMos | 2026
// dto.go

package feed

import (
	"time"
)

type CreatePostRequest struct {
	Content  []Block   `json:"content"            validate:"required,min=1,max=20,dive"`
	Location *Location `json:"location,omitempty" validate:"omitempty"`
}

type CommentRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type LikeResult struct {
	Liked bool `json:"liked"`
}

type PostResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	BeadID       *string   `json:"bead_id,omitempty"`
	BeadName     string    `json:"bead_name,omitempty"`
	BeadImage    string    `json:"bead_image,omitempty"`
	UserID       string    `json:"user_id"`
	AuthorName   string    `json:"author_name,omitempty"`
	AuthorAvatar string    `json:"author_avatar,omitempty"`
	Content      []Block   `json:"content"`
	Location     *Location `json:"location,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type LikeResponse struct {
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentResponse struct {
	ID         string    `json:"id"`
	PostID     string    `json:"post_id"`
	UserID     string    `json:"user_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToPostResponse(v *PostView) PostResponse {
	content := []Block(v.Content)
	if content == nil {
		content = []Block{}
	}
	return PostResponse{
		ID:           v.ID,
		Type:         v.Type,
		BeadID:       v.BeadID,
		BeadName:     v.BeadName,
		BeadImage:    v.BeadImage,
		UserID:       v.UserID,
		AuthorName:   v.AuthorName,
		AuthorAvatar: v.AuthorAvatar,
		Content:      content,
		Location:     v.Location,
		LikeCount:    v.LikeCount,
		CommentCount: v.CommentCount,
		CreatedAt:    v.CreatedAt,
	}
}

func ToPostResponseList(views []PostView) []PostResponse {
	out := make([]PostResponse, 0, len(views))
	for i := range views {
		out = append(out, ToPostResponse(&views[i]))
	}
	return out
}

func ToLikeResponseList(likes []Like) []LikeResponse {
	out := make([]LikeResponse, 0, len(likes))
	for _, l := range likes {
		out = append(out, LikeResponse{UserID: l.UserID, FullName: l.FullName, CreatedAt: l.CreatedAt})
	}
	return out
}

func ToCommentResponse(c *Comment) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Text:       c.Text,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func ToCommentResponseList(comments []Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for i := range comments {
		out = append(out, ToCommentResponse(&comments[i]))
	}
	return out
}
