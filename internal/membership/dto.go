// AngelaMos | 2026
// dto.go

package membership

import (
	"time"
)

type CreateRequest struct {
	ThreadID string `json:"thread_id" validate:"required,uuid"`
	Message  string `json:"message"   validate:"max=1000"`
}

type RespondRequest struct {
	ThreadID        string `json:"thread_id"        validate:"omitempty,uuid"`
	Accept          *bool  `json:"accept"           validate:"required"`
	ResponseMessage string `json:"response_message" validate:"max=1000"`
}

type RespondResult struct {
	RequestID     string `json:"request_id"`
	ThreadID      string `json:"thread_id"`
	Status        string `json:"status"`
	AlreadyMember bool   `json:"already_member,omitempty"`
}

type RequestResponse struct {
	ID              string     `json:"id"`
	ThreadID        string     `json:"thread_id"`
	ThreadName      string     `json:"thread_name,omitempty"`
	RequesterID     string     `json:"requester_id"`
	RequesterName   string     `json:"requester_name,omitempty"`
	RequesterEmail  string     `json:"requester_email,omitempty"`
	Message         string     `json:"message,omitempty"`
	Status          string     `json:"status"`
	ResponderID     *string    `json:"responder_id,omitempty"`
	ResponseMessage string     `json:"response_message,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func ToRequestResponse(r *Request) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		ThreadID:        r.ThreadID,
		RequesterID:     r.RequesterID,
		Message:         r.Message,
		Status:          r.Status,
		ResponderID:     r.ResponderID,
		ResponseMessage: r.ResponseMessage,
		RespondedAt:     r.RespondedAt,
		CreatedAt:       r.CreatedAt,
	}
}

func ToViewList(views []View) []RequestResponse {
	out := make([]RequestResponse, 0, len(views))
	for i := range views {
		resp := ToRequestResponse(&views[i].Request)
		resp.ThreadName = views[i].ThreadName
		resp.RequesterName = views[i].RequesterName
		resp.RequesterEmail = views[i].RequesterEmail
		out = append(out, resp)
	}
	return out
}
