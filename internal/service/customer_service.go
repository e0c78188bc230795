package service

import (
	"context"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// CustomerService manages customers and their channel addresses for the
// agent-facing API. The inbound auto-creation path lives in the conversation
// service.
type CustomerService struct {
	customers repository.CustomerRepository
	contacts  repository.ContactRepository
}

// CustomerInput captures create and update fields.
type CustomerInput struct {
	Name     string
	Email    *string
	Document *string
	Segment  domain.CustomerSegment
}

// ContactInput attaches a channel address to a customer.
type ContactInput struct {
	CustomerID     string
	WhatsappNumber string
	Name           *string
}

// NewCustomerService constructs the service.
func NewCustomerService(customers repository.CustomerRepository, contacts repository.ContactRepository) *CustomerService {
	return &CustomerService{customers: customers, contacts: contacts}
}

// Search returns active customers matching the term, paged.
func (s *CustomerService) Search(ctx context.Context, term string, limit, offset int) ([]domain.Customer, int, error) {
	return s.customers.Search(ctx, term, limit, offset)
}

// Get loads one customer.
func (s *CustomerService) Get(ctx context.Context, id string) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	return customer, nil
}

// Create registers a customer.
func (s *CustomerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errorutil.NewValidationError("name is required", nil)
	}
	if input.Segment == "" {
		input.Segment = domain.SegmentResidential
	}

	customer := &domain.Customer{
		Name:     input.Name,
		Email:    input.Email,
		Document: input.Document,
		Segment:  input.Segment,
		IsActive: true,
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// Update rewrites the customer's profile fields.
func (s *CustomerService) Update(ctx context.Context, id string, input CustomerInput) (*domain.Customer, error) {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	if strings.TrimSpace(input.Name) != "" {
		customer.Name = input.Name
	}
	if input.Email != nil {
		customer.Email = input.Email
	}
	if input.Document != nil {
		customer.Document = input.Document
	}
	if input.Segment != "" {
		customer.Segment = input.Segment
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	return customer, nil
}

// Deactivate soft deletes the customer.
func (s *CustomerService) Deactivate(ctx context.Context, id string) error {
	customer, err := s.customers.GetByID(ctx, id)
	if err != nil {
		return errorutil.ToDomainError(err)
	}
	customer.IsActive = false
	return errorutil.MapError(s.customers.Update(ctx, customer))
}

// ListContacts returns the customer's channel addresses.
func (s *CustomerService) ListContacts(ctx context.Context, customerID string) ([]domain.Contact, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, errorutil.ToDomainError(err)
	}
	return s.contacts.ListByCustomer(ctx, customerID)
}

// AddContact attaches a whatsapp address to an existing customer.
func (s *CustomerService) AddContact(ctx context.Context, input ContactInput) (*domain.Contact, error) {
	if strings.TrimSpace(input.WhatsappNumber) == "" {
		return nil, errorutil.NewValidationError("whatsapp number is required", nil)
	}
	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, errorutil.ToDomainError(err)
	}

	contact := &domain.Contact{
		CustomerID:     input.CustomerID,
		WhatsappNumber: input.WhatsappNumber,
		Name:           input.Name,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		if errorutil.IsUniqueViolation(err) {
			return nil, errorutil.NewConflict("whatsapp number already registered", nil)
		}
		return nil, err
	}
	return contact, nil
}
