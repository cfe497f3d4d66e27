// AngelaMos | 2026
// dto.go

package purchase

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	ThreadID   string          `json:"thread_id"   validate:"required"`
	BeadID     string          `json:"bead_id"     validate:"required"`
	OfferPrice decimal.Decimal `json:"offer_price"`
	Message    string          `json:"message"     validate:"max=1000"`
}

type RespondRequest struct {
	Accept          *bool  `json:"accept"           validate:"required"`
	ResponseMessage string `json:"response_message" validate:"max=1000"`
}

type CreateResult struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type RespondResult struct {
	RequestID  string `json:"request_id"`
	Status     string `json:"status"`
	BeadID     string `json:"bead_id"`
	NewOwnerID string `json:"new_owner_id"`
}

type RequestResponse struct {
	ID              string          `json:"id"`
	ThreadID        string          `json:"thread_id"`
	BeadID          string          `json:"bead_id"`
	BeadName        string          `json:"bead_name,omitempty"`
	BuyerID         string          `json:"buyer_id"`
	BuyerName       string          `json:"buyer_name,omitempty"`
	BuyerEmail      string          `json:"buyer_email,omitempty"`
	OfferPrice      decimal.Decimal `json:"offer_price"`
	Message         string          `json:"message,omitempty"`
	Status          string          `json:"status"`
	ResponseMessage string          `json:"response_message,omitempty"`
	RespondedAt     *time.Time      `json:"responded_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func ToRequestResponse(r *Request) RequestResponse {
	return RequestResponse{
		ID:              r.ID,
		ThreadID:        r.ThreadID,
		BeadID:          r.BeadID,
		BuyerID:         r.BuyerID,
		OfferPrice:      r.OfferPrice,
		Message:         r.Message,
		Status:          r.Status,
		ResponseMessage: r.ResponseMessage,
		RespondedAt:     r.RespondedAt,
		CreatedAt:       r.CreatedAt,
	}
}

func ToViewList(views []View) []RequestResponse {
	out := make([]RequestResponse, 0, len(views))
	for i := range views {
		resp := ToRequestResponse(&views[i].Request)
		resp.BeadName = views[i].BeadName
		resp.BuyerName = views[i].BuyerName
		resp.BuyerEmail = views[i].BuyerEmail
		out = append(out, resp)
	}
	return out
}
