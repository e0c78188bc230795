package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	CustomerID  string                `json:"customer_id"`
	ContactID   string                `json:"contact_id"`
	Channel     string                `json:"channel"`
}

// UpdateTicketRequest carries a partial mutation; absent fields stay as-is.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Status      *domain.TicketStatus   `json:"status"`
	Priority    *domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload. A null agent id unassigns.
type AssignTicketRequest struct {
	AgentID *string `json:"agent_id"`
}

// TicketResponse response.
type TicketResponse struct {
	ID              string                `json:"id"`
	Number          string                `json:"number"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	CustomerID      string                `json:"customer_id"`
	ContactID       string                `json:"contact_id"`
	AssignedAgentID *string               `json:"assigned_agent_id"`
	SLAPolicyID     *string               `json:"sla_policy_id"`
	Channel         string                `json:"channel"`
	FirstResponseAt *time.Time            `json:"first_response_at"`
	ResolvedAt      *time.Time            `json:"resolved_at"`
	ClosedAt        *time.Time            `json:"closed_at"`
	SLABreached     bool                  `json:"sla_breached"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TicketListResponse is a filtered page plus the unpaged total.
type TicketListResponse struct {
	Items []TicketResponse `json:"items"`
	Total int              `json:"total"`
}

// CreateMessageRequest payload for agent replies and internal notes.
type CreateMessageRequest struct {
	Content     string             `json:"content"`
	Type        domain.MessageType `json:"type"`
	MediaURL    *string            `json:"media_url"`
	IsInternal  bool               `json:"is_internal"`
	InstanceKey string             `json:"instance_key"`
}

// MessageResponse response.
type MessageResponse struct {
	ID                string                  `json:"id"`
	TicketID          string                  `json:"ticket_id"`
	Direction         domain.MessageDirection `json:"direction"`
	Type              domain.MessageType      `json:"type"`
	Content           string                  `json:"content"`
	MediaURL          *string                 `json:"media_url"`
	SenderID          *string                 `json:"sender_id"`
	ProviderMessageID *string                 `json:"provider_message_id"`
	Status            domain.MessageStatus    `json:"status"`
	IsInternal        bool                    `json:"is_internal"`
	CreatedAt         time.Time               `json:"created_at"`
}

// TagResponse response.
type TagResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
