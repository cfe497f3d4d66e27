// AngelaMos | 2026
// dto.go

package thread

import (
	"time"
)

type CreateThreadRequest struct {
	Name        string   `json:"name"        validate:"required,min=1,max=120"`
	Description string   `json:"description" validate:"max=2000"`
	Visibility  string   `json:"visibility"  validate:"omitempty,oneof=public private"`
	MemberIDs   []string `json:"member_ids"  validate:"omitempty,max=500,dive,uuid"`
}

// UpdateThreadRequest is a partial update: nil fields are left untouched.
type UpdateThreadRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Visibility  *string `json:"visibility,omitempty"  validate:"omitempty,oneof=public private"`
	Avatar      *string `json:"avatar,omitempty"      validate:"omitempty,max=2048"`
}

func (r UpdateThreadRequest) ApplyTo(t *Thread) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Visibility != nil {
		t.Visibility = *r.Visibility
	}
	if r.Avatar != nil {
		t.Avatar = *r.Avatar
	}
}

type MembersRequest struct {
	MemberIDs []string `json:"member_ids" validate:"required,min=1,max=500"`
}

type JoinResult struct {
	ThreadID      string `json:"thread_id"`
	UserID        string `json:"user_id"`
	AlreadyMember bool   `json:"already_member"`
}

type MemberResponse struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	Avatar   string    `json:"avatar,omitempty"`
	AddedAt  time.Time `json:"added_at,omitzero"`
}

type BeadResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

type ThreadResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	Visibility  string    `json:"visibility"`
	Avatar      string    `json:"avatar,omitempty"`
	QRCode      string    `json:"qr_code"`
	Link        string    `json:"link"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SummaryResponse struct {
	ThreadResponse
	OwnerName   string `json:"owner_name"`
	MemberCount int    `json:"member_count"`
	BeadCount   int    `json:"bead_count"`
}

type DetailResponse struct {
	ThreadResponse
	Owner   *MemberResponse  `json:"owner,omitempty"`
	Members []MemberResponse `json:"members"`
	Beads   []BeadResponse   `json:"beads"`
}

func ToThreadResponse(t *Thread) ThreadResponse {
	return ThreadResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		OwnerID:     t.OwnerID,
		Visibility:  t.Visibility,
		Avatar:      t.Avatar,
		QRCode:      t.QRCode,
		Link:        t.Link,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToSummaryList(rows []Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(rows))
	for i := range rows {
		out = append(out, SummaryResponse{
			ThreadResponse: ToThreadResponse(&rows[i].Thread),
			OwnerName:      rows[i].OwnerName,
			MemberCount:    rows[i].MemberCount,
			BeadCount:      rows[i].BeadCount,
		})
	}
	return out
}

func toMemberResponse(m Member) MemberResponse {
	return MemberResponse{
		ID:       m.UserID,
		FullName: m.FullName,
		Avatar:   m.Avatar,
		AddedAt:  m.AddedAt,
	}
}

func ToDetailResponse(d *Detail) DetailResponse {
	resp := DetailResponse{
		ThreadResponse: ToThreadResponse(&d.Thread),
		Members:        make([]MemberResponse, 0, len(d.Members)),
		Beads:          make([]BeadResponse, 0, len(d.Beads)),
	}

	if d.Owner != nil {
		owner := toMemberResponse(*d.Owner)
		resp.Owner = &owner
	}

	for _, m := range d.Members {
		resp.Members = append(resp.Members, toMemberResponse(m))
	}

	for _, b := range d.Beads {
		br := BeadResponse{ID: b.ID, Name: b.Name, OwnerID: b.OwnerID}
		if len(b.Images) > 0 {
			br.Thumbnail = b.Images[0]
		}
		resp.Beads = append(resp.Beads, br)
	}

	return resp
}
