package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen              TicketStatus = "open"
	TicketStatusInProgress        TicketStatus = "in_progress"
	TicketStatusPendingCustomer   TicketStatus = "pending_customer"
	TicketStatusPendingThirdParty TicketStatus = "pending_third_party"
	TicketStatusResolved          TicketStatus = "resolved"
	TicketStatusClosed            TicketStatus = "closed"
	TicketStatusCancelled         TicketStatus = "cancelled"
)

// IsTerminal reports whether no further transitions are possible.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed || s == TicketStatusCancelled
}

// Valid reports whether the value is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusPendingCustomer,
		TicketStatusPendingThirdParty, TicketStatusResolved, TicketStatusClosed,
		TicketStatusCancelled:
		return true
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityNormal   TicketPriority = "normal"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// Valid reports whether the value is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for support conversations. A ticket always belongs
// to exactly one customer and one contact; the assigned agent is optional.
type Ticket struct {
	ID              string
	Number          string
	Title           string
	Description     string
	Status          TicketStatus
	Priority        TicketPriority
	CustomerID      string
	ContactID       string
	AssignedAgentID *string
	TeamID          *string
	CategoryID      *string
	SLAPolicyID     *string
	Channel         string
	FirstResponseAt *time.Time
	ResolvedAt      *time.Time
	ClosedAt        *time.Time
	SLABreached     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
