package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/provider"
	"github.com/spec-kit/support-desk/internal/repository"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[string]domain.Customer
	seq       int
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[string]domain.Customer)}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	customer.ID = fmt.Sprintf("cust-%d", r.seq)
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = customer.CreatedAt
	r.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *domain.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.customers[customer.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customer, ok := r.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := customer
	return &out, nil
}

func (r *fakeCustomerRepo) Search(_ context.Context, _ string, _, _ int) ([]domain.Customer, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Customer
	for _, customer := range r.customers {
		result = append(result, customer)
	}
	return result, len(result), nil
}

func (r *fakeCustomerRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.customers)
}

type fakeContactRepo struct {
	mu       sync.Mutex
	contacts map[string]domain.Contact
	byNumber map[string]string
	seq      int
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{
		contacts: make(map[string]domain.Contact),
		byNumber: make(map[string]string),
	}
}

func (r *fakeContactRepo) Create(_ context.Context, contact *domain.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[contact.WhatsappNumber]; ok {
		return uniqueViolation()
	}
	r.seq++
	contact.ID = fmt.Sprintf("contact-%d", r.seq)
	contact.CreatedAt = time.Now()
	r.contacts[contact.ID] = *contact
	r.byNumber[contact.WhatsappNumber] = contact.ID
	return nil
}

func (r *fakeContactRepo) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contact, ok := r.contacts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := contact
	return &out, nil
}

func (r *fakeContactRepo) GetByWhatsappNumber(_ context.Context, number string) (*domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := r.contacts[id]
	return &out, nil
}

func (r *fakeContactRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Contact
	for _, contact := range r.contacts {
		if contact.CustomerID == customerID {
			result = append(result, contact)
		}
	}
	return result, nil
}

type fakeTicketRepo struct {
	mu        sync.Mutex
	tickets   map[string]domain.Ticket
	byNumber  map[string]string
	order     []string
	seq       int
	createErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:  make(map[string]domain.Ticket),
		byNumber: make(map[string]string),
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	if _, ok := r.byNumber[ticket.Number]; ok {
		return uniqueViolation()
	}
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.tickets[ticket.ID] = *ticket
	r.byNumber[ticket.Number] = ticket.ID
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := ticket
	return &out, nil
}

func (r *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byNumber[number]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := r.tickets[id]
	return &out, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, id := range r.order {
		ticket := r.tickets[id]
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		result = append(result, ticket)
	}
	return result, len(result), nil
}

func (r *fakeTicketRepo) FindLatestOpenByCustomer(_ context.Context, customerID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.order) - 1; i >= 0; i-- {
		ticket := r.tickets[r.order[i]]
		if ticket.CustomerID == customerID && ticket.Status == domain.TicketStatusOpen {
			out := ticket
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) CountCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, ticket := range r.tickets {
		if !ticket.CreatedAt.Before(from) && ticket.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) Counts(_ context.Context, _ time.Time) (repository.TicketCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var counts repository.TicketCounts
	for _, ticket := range r.tickets {
		switch ticket.Status {
		case domain.TicketStatusOpen:
			counts.Open++
		case domain.TicketStatusInProgress:
			counts.InProgress++
		case domain.TicketStatusResolved:
			counts.ResolvedToday++
		}
	}
	return counts, nil
}

func (r *fakeTicketRepo) ListUnbreachedWithPolicy(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, id := range r.order {
		ticket := r.tickets[id]
		if ticket.SLAPolicyID == nil || ticket.SLABreached || ticket.Status.IsTerminal() {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickets)
}

func (r *fakeTicketRepo) setCreatedAt(id string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket := r.tickets[id]
	ticket.CreatedAt = at
	r.tickets[id] = ticket
}

type fakeMessageRepo struct {
	mu         sync.Mutex
	messages   map[string]domain.Message
	byProvider map[string]string
	order      []string
	seq        int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages:   make(map[string]domain.Message),
		byProvider: make(map[string]string),
	}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.ID = fmt.Sprintf("msg-%d", r.seq)
	msg.CreatedAt = time.Now()
	r.messages[msg.ID] = *msg
	if msg.ProviderMessageID != nil {
		r.byProvider[*msg.ProviderMessageID] = msg.ID
	}
	r.order = append(r.order, msg.ID)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Message
	for _, id := range r.order {
		msg := r.messages[id]
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) GetByProviderMessageID(_ context.Context, providerMessageID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byProvider[providerMessageID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := r.messages[id]
	return &out, nil
}

func (r *fakeMessageRepo) UpdateStatus(_ context.Context, id string, status domain.MessageStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[id]
	if !ok {
		return pgx.ErrNoRows
	}
	msg.Status = status
	r.messages[id] = msg
	return nil
}

func (r *fakeMessageRepo) get(id string) domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.messages[id]
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type fakeSLARepo struct {
	policies map[string]domain.SLAPolicy
}

func newFakeSLARepo() *fakeSLARepo {
	return &fakeSLARepo{policies: make(map[string]domain.SLAPolicy)}
}

func (r *fakeSLARepo) GetByID(_ context.Context, id string) (*domain.SLAPolicy, error) {
	policy, ok := r.policies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := policy
	return &out, nil
}

func (r *fakeSLARepo) GetActiveByPriority(_ context.Context, priority domain.TicketPriority) (*domain.SLAPolicy, error) {
	for _, policy := range r.policies {
		if policy.Priority == priority && policy.IsActive {
			out := policy
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeUserRepo struct {
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return uniqueViolation()
		}
	}
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := user
	return &out, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			out := user
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListActive(_ context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.IsActive {
			result = append(result, user)
		}
	}
	return result, nil
}

type fakeTagRepo struct {
	tags     map[string]domain.Tag
	attached map[string]map[string]struct{}
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{
		tags:     make(map[string]domain.Tag),
		attached: make(map[string]map[string]struct{}),
	}
}

func (r *fakeTagRepo) ListActive(_ context.Context) ([]domain.Tag, error) {
	var result []domain.Tag
	for _, tag := range r.tags {
		if tag.IsActive {
			result = append(result, tag)
		}
	}
	return result, nil
}

func (r *fakeTagRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Tag, error) {
	var result []domain.Tag
	for tagID := range r.attached[ticketID] {
		result = append(result, r.tags[tagID])
	}
	return result, nil
}

func (r *fakeTagRepo) AttachToTicket(_ context.Context, ticketID, tagID string) error {
	if r.attached[ticketID] == nil {
		r.attached[ticketID] = make(map[string]struct{})
	}
	r.attached[ticketID][tagID] = struct{}{}
	return nil
}

func (r *fakeTagRepo) DetachFromTicket(_ context.Context, ticketID, tagID string) error {
	delete(r.attached[ticketID], tagID)
	return nil
}

type fakeSender struct {
	mu       sync.Mutex
	sent     []provider.SendRequest
	failNext bool
}

func (s *fakeSender) SendMessage(_ context.Context, req provider.SendRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return false
	}
	s.sent = append(s.sent, req)
	return true
}

func (s *fakeSender) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
