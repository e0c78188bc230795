package domain

import "time"

// SLAPolicy defines response targets per priority, in minutes.
type SLAPolicy struct {
	ID                  string
	Name                string
	Priority            TicketPriority
	FirstResponseTarget int
	ResolutionTarget    int
	IsActive            bool
	CreatedAt           time.Time
}

// FirstResponseDeadline returns the instant by which the first non-internal
// outbound message must exist.
func (p *SLAPolicy) FirstResponseDeadline(createdAt time.Time) time.Time {
	return createdAt.Add(time.Duration(p.FirstResponseTarget) * time.Minute)
}

// ResolutionDeadline returns the instant by which the ticket must be resolved.
func (p *SLAPolicy) ResolutionDeadline(createdAt time.Time) time.Time {
	return createdAt.Add(time.Duration(p.ResolutionTarget) * time.Minute)
}
