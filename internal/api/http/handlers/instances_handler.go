package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// InstancesHandler manages provider instance endpoints. Admin only.
type InstancesHandler struct {
	service *service.InstanceService
}

// NewInstancesHandler constructs handler.
func NewInstancesHandler(instanceService *service.InstanceService) *InstancesHandler {
	return &InstancesHandler{service: instanceService}
}

// List GET /instances.
func (h *InstancesHandler) List(c *fiber.Ctx) error {
	instances, err := h.service.ListActive(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.InstanceResponse, 0, len(instances))
	for i := range instances {
		items = append(items, instanceResponse(&instances[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /instances.
func (h *InstancesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	instance, err := h.service.Create(c.Context(), service.CreateInstanceInput{
		Name:        req.Name,
		InstanceKey: req.InstanceKey,
		APIURL:      req.APIURL,
		Token:       req.Token,
		Number:      req.Number,
		WebhookURL:  req.WebhookURL,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": instanceResponse(instance)})
}

func instanceResponse(instance *domain.ProviderInstance) dto.InstanceResponse {
	return dto.InstanceResponse{
		ID:          instance.ID,
		Name:        instance.Name,
		InstanceKey: instance.InstanceKey,
		Number:      instance.Number,
		Status:      instance.Status,
		APIURL:      instance.APIURL,
		WebhookURL:  instance.WebhookURL,
		IsActive:    instance.IsActive,
		LastSyncAt:  instance.LastSyncAt,
		CreatedAt:   instance.CreatedAt,
	}
}
