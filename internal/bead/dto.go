// AngelaMos | 2026
// dto.go

package bead

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateBeadRequest struct {
	Name         string          `json:"name"           validate:"required,min=1,max=120"`
	BeadType     string          `json:"type"           validate:"max=60"`
	Material     string          `json:"material"       validate:"max=60"`
	Color        string          `json:"color"          validate:"max=60"`
	Size         string          `json:"size"           validate:"max=60"`
	Shape        string          `json:"shape"          validate:"max=60"`
	Weight       string          `json:"weight"         validate:"max=60"`
	Finish       string          `json:"finish"         validate:"max=60"`
	Quantity     int             `json:"quantity"       validate:"gte=0"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	Supplier     string          `json:"supplier"       validate:"max=120"`
	ProductCode  string          `json:"product_code"   validate:"max=60"`
	Description  string          `json:"description"    validate:"max=4000"`
	ThreadID     string          `json:"thread_id"      validate:"omitempty,uuid"`
	Images       []string        `json:"images"         validate:"omitempty,dive,url"`
}

// UpdateBeadRequest is a partial update: nil fields are left untouched.
// Ownership is not part of it.
type UpdateBeadRequest struct {
	Name         *string          `json:"name,omitempty"           validate:"omitempty,min=1,max=120"`
	BeadType     *string          `json:"type,omitempty"           validate:"omitempty,max=60"`
	Material     *string          `json:"material,omitempty"       validate:"omitempty,max=60"`
	Color        *string          `json:"color,omitempty"          validate:"omitempty,max=60"`
	Size         *string          `json:"size,omitempty"           validate:"omitempty,max=60"`
	Shape        *string          `json:"shape,omitempty"          validate:"omitempty,max=60"`
	Weight       *string          `json:"weight,omitempty"         validate:"omitempty,max=60"`
	Finish       *string          `json:"finish,omitempty"         validate:"omitempty,max=60"`
	Quantity     *int             `json:"quantity,omitempty"       validate:"omitempty,gte=0"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit,omitempty"`
	Supplier     *string          `json:"supplier,omitempty"       validate:"omitempty,max=120"`
	ProductCode  *string          `json:"product_code,omitempty"   validate:"omitempty,max=60"`
	Description  *string          `json:"description,omitempty"    validate:"omitempty,max=4000"`
}

func (r UpdateBeadRequest) ApplyTo(b *Bead) {
	setString(&b.Name, r.Name)
	setString(&b.BeadType, r.BeadType)
	setString(&b.Material, r.Material)
	setString(&b.Color, r.Color)
	setString(&b.Size, r.Size)
	setString(&b.Shape, r.Shape)
	setString(&b.Weight, r.Weight)
	setString(&b.Finish, r.Finish)
	setString(&b.Supplier, r.Supplier)
	setString(&b.ProductCode, r.ProductCode)
	setString(&b.Description, r.Description)

	if r.Quantity != nil {
		b.Quantity = *r.Quantity
	}
	if r.PricePerUnit != nil {
		b.PricePerUnit = *r.PricePerUnit
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

type ImagesRequest struct {
	Images []string `json:"images" validate:"required,min=1,dive,url"`
}

type BeadResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	BeadType         string          `json:"type,omitempty"`
	Material         string          `json:"material,omitempty"`
	Color            string          `json:"color,omitempty"`
	Size             string          `json:"size,omitempty"`
	Shape            string          `json:"shape,omitempty"`
	Weight           string          `json:"weight,omitempty"`
	Finish           string          `json:"finish,omitempty"`
	Quantity         int             `json:"quantity"`
	PricePerUnit     decimal.Decimal `json:"price_per_unit"`
	Supplier         string          `json:"supplier,omitempty"`
	ProductCode      string          `json:"product_code,omitempty"`
	Description      string          `json:"description,omitempty"`
	OwnerID          string          `json:"owner_id"`
	ThreadID         *string         `json:"thread_id,omitempty"`
	OwnershipHistory []string        `json:"ownership_history"`
	Images           []string        `json:"images"`
	QRCode           string          `json:"qr_code"`
	Link             string          `json:"link"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

type SummaryResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	OwnerID      string          `json:"owner_id"`
	OwnerName    string          `json:"owner_name"`
	ThreadID     *string         `json:"thread_id,omitempty"`
	ThreadName   string          `json:"thread_name,omitempty"`
	Thumbnail    string          `json:"thumbnail,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func ToBeadResponse(b *Bead) BeadResponse {
	return BeadResponse{
		ID:               b.ID,
		Name:             b.Name,
		BeadType:         b.BeadType,
		Material:         b.Material,
		Color:            b.Color,
		Size:             b.Size,
		Shape:            b.Shape,
		Weight:           b.Weight,
		Finish:           b.Finish,
		Quantity:         b.Quantity,
		PricePerUnit:     b.PricePerUnit,
		Supplier:         b.Supplier,
		ProductCode:      b.ProductCode,
		Description:      b.Description,
		OwnerID:          b.OwnerID,
		ThreadID:         b.ThreadID,
		OwnershipHistory: nonNil(b.OwnershipHistory),
		Images:           nonNil(b.Images),
		QRCode:           b.QRCode,
		Link:             b.Link,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

func ToSummaryList(rows []Summary) []SummaryResponse {
	out := make([]SummaryResponse, 0, len(rows))
	for i := range rows {
		s := &rows[i]
		out = append(out, SummaryResponse{
			ID:           s.ID,
			Name:         s.Name,
			PricePerUnit: s.PricePerUnit,
			OwnerID:      s.OwnerID,
			OwnerName:    s.OwnerName,
			ThreadID:     s.ThreadID,
			ThreadName:   s.ThreadName,
			Thumbnail:    s.Thumbnail(),
			CreatedAt:    s.CreatedAt,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
