package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateInstanceRequest registers a provider endpoint.
type CreateInstanceRequest struct {
	Name        string  `json:"name"`
	InstanceKey string  `json:"instance_key"`
	APIURL      string  `json:"api_url"`
	Token       string  `json:"token"`
	Number      *string `json:"number"`
	WebhookURL  *string `json:"webhook_url"`
}

// InstanceResponse response. The API token stays server-side.
type InstanceResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	InstanceKey string                `json:"instance_key"`
	Number      *string               `json:"number"`
	Status      domain.InstanceStatus `json:"status"`
	APIURL      string                `json:"api_url"`
	WebhookURL  *string               `json:"webhook_url"`
	IsActive    bool                  `json:"is_active"`
	LastSyncAt  *time.Time            `json:"last_sync_at"`
	CreatedAt   time.Time             `json:"created_at"`
}
