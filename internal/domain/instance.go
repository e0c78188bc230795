package domain

import "time"

// InstanceStatus mirrors the provider's connection state for an instance.
type InstanceStatus string

const (
	InstanceConnected    InstanceStatus = "connected"
	InstanceConnecting   InstanceStatus = "connecting"
	InstanceDisconnected InstanceStatus = "disconnected"
)

// ProviderInstance is a configured messaging-provider endpoint. The instance
// key routes webhook traffic and selects credentials for outbound dispatch.
type ProviderInstance struct {
	ID          string
	Name        string
	InstanceKey string
	Number      *string
	Status      InstanceStatus
	APIURL      string
	Token       string
	WebhookURL  *string
	IsActive    bool
	LastSyncAt  *time.Time
	CreatedAt   time.Time
}
