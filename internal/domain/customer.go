package domain

import "time"

// CustomerSegment classifies customers for routing and reporting.
type CustomerSegment string

const (
	SegmentResidential CustomerSegment = "residential"
	SegmentBusiness    CustomerSegment = "business"
	SegmentEnterprise  CustomerSegment = "enterprise"
)

// Customer identifies a person or organization. Customers are never hard
// deleted; IsActive false marks deactivation.
type Customer struct {
	ID        string
	Name      string
	Email     *string
	Document  *string
	Segment   CustomerSegment
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Contact is a messaging-channel address bound to exactly one customer.
// The WhatsApp number is globally unique across contacts.
type Contact struct {
	ID             string
	CustomerID     string
	WhatsappNumber string
	Name           *string
	CreatedAt      time.Time
}
