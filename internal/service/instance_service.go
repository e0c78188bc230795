package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/provider"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// InstanceService manages provider instances and keeps the outbound client's
// credential cache in sync with them.
type InstanceService struct {
	instances repository.InstanceRepository
	client    *provider.Client
	logger    *zap.Logger
}

// CreateInstanceInput registers a provider endpoint.
type CreateInstanceInput struct {
	Name        string
	InstanceKey string
	APIURL      string
	Token       string
	Number      *string
	WebhookURL  *string
}

// NewInstanceService constructs the service.
func NewInstanceService(instances repository.InstanceRepository, client *provider.Client, logger *zap.Logger) *InstanceService {
	return &InstanceService{instances: instances, client: client, logger: logger}
}

// ListActive returns configured instances.
func (s *InstanceService) ListActive(ctx context.Context) ([]domain.ProviderInstance, error) {
	return s.instances.ListActive(ctx)
}

// Create registers an instance and refreshes the dispatch credentials.
func (s *InstanceService) Create(ctx context.Context, input CreateInstanceInput) (*domain.ProviderInstance, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errorutil.NewValidationError("name is required", nil)
	}
	if strings.TrimSpace(input.InstanceKey) == "" {
		return nil, errorutil.NewValidationError("instance key is required", nil)
	}
	if strings.TrimSpace(input.APIURL) == "" || strings.TrimSpace(input.Token) == "" {
		return nil, errorutil.NewValidationError("api url and token are required", nil)
	}

	instance := &domain.ProviderInstance{
		Name:        input.Name,
		InstanceKey: input.InstanceKey,
		Number:      input.Number,
		Status:      domain.InstanceConnecting,
		APIURL:      strings.TrimRight(input.APIURL, "/"),
		Token:       input.Token,
		WebhookURL:  input.WebhookURL,
		IsActive:    true,
	}
	if err := s.instances.Create(ctx, instance); err != nil {
		if errorutil.IsUniqueViolation(err) {
			return nil, errorutil.NewConflict("instance key already registered", nil)
		}
		return nil, err
	}

	s.RefreshClient(ctx)
	return instance, nil
}

// MarkStatus records the provider-reported connection state.
func (s *InstanceService) MarkStatus(ctx context.Context, id string, status domain.InstanceStatus) error {
	if err := s.instances.UpdateStatus(ctx, id, status); err != nil {
		return errorutil.ToDomainError(err)
	}
	return nil
}

// RefreshClient reloads active instances into the outbound client. Failures
// leave the previous credentials in place.
func (s *InstanceService) RefreshClient(ctx context.Context) {
	instances, err := s.instances.ListActive(ctx)
	if err != nil {
		s.logger.Error("reload provider instances", zap.Error(err))
		return
	}
	s.client.Configure(instances)
}
