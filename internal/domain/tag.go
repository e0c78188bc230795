package domain

import "time"

// Tag is a label attachable to tickets many-to-many.
type Tag struct {
	ID        string
	Name      string
	Color     string
	IsActive  bool
	CreatedAt time.Time
}
