// AngelaMos | 2026
// dto.go

package contact

import "time"

type CreateRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=100"`
	Email   string `json:"email"   validate:"required,email,max=254"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func ToMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}
