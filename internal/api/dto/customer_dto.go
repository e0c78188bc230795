package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CustomerRequest payload for create and update.
type CustomerRequest struct {
	Name     string                 `json:"name"`
	Email    *string                `json:"email"`
	Document *string                `json:"document"`
	Segment  domain.CustomerSegment `json:"segment"`
}

// CustomerResponse response.
type CustomerResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Email     *string                `json:"email"`
	Document  *string                `json:"document"`
	Segment   domain.CustomerSegment `json:"segment"`
	IsActive  bool                   `json:"is_active"`
	CreatedAt time.Time              `json:"created_at"`
}

// CustomerListResponse is a search page plus the unpaged total.
type CustomerListResponse struct {
	Items []CustomerResponse `json:"items"`
	Total int                `json:"total"`
}

// ContactRequest attaches a channel address to a customer.
type ContactRequest struct {
	WhatsappNumber string  `json:"whatsapp_number"`
	Name           *string `json:"name"`
}

// ContactResponse response.
type ContactResponse struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"customer_id"`
	WhatsappNumber string    `json:"whatsapp_number"`
	Name           *string   `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
}
