package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apexlens/backoffice/internal/domain"
	"github.com/apexlens/backoffice/internal/provider"
	"github.com/apexlens/backoffice/internal/realtime"
)

var (
	_ jobRepo         = &jobRepoMock{}
	_ paymentProvider = &paymentProviderMock{}
	_ eventPublisher  = &eventPublisherMock{}
)

type jobRepoMock struct {
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	SetInvoiceFunc func(ctx context.Context, id uuid.UUID, customerID, invoiceID string, status domain.InvoiceStatus) (*domain.Job, error)
	MarkPaidFunc   func(ctx context.Context, id uuid.UUID, completedAt time.Time) (*domain.Job, error)
}

func (m *jobRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *jobRepoMock) SetInvoice(ctx context.Context, id uuid.UUID, customerID, invoiceID string, status domain.InvoiceStatus) (*domain.Job, error) {
	return m.SetInvoiceFunc(ctx, id, customerID, invoiceID, status)
}

func (m *jobRepoMock) MarkPaid(ctx context.Context, id uuid.UUID, completedAt time.Time) (*domain.Job, error) {
	return m.MarkPaidFunc(ctx, id, completedAt)
}

type paymentProviderMock struct {
	CreateCustomerFunc  func(ctx context.Context, email, name string) (string, error)
	CreateInvoiceFunc   func(ctx context.Context, customerID string) (string, error)
	AddLineItemFunc     func(ctx context.Context, customerID, invoiceID string, amountCents int64, description string) error
	FinalizeInvoiceFunc func(ctx context.Context, invoiceID string) (*provider.Invoice, error)
	SendInvoiceFunc     func(ctx context.Context, invoiceID string) (*provider.Invoice, error)
	GetInvoiceFunc      func(ctx context.Context, invoiceID string) (*provider.Invoice, error)

	createCustomerCalls int
}

func (m *paymentProviderMock) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	m.createCustomerCalls++
	return m.CreateCustomerFunc(ctx, email, name)
}

func (m *paymentProviderMock) CreateCustomerCalls() int { return m.createCustomerCalls }

func (m *paymentProviderMock) CreateInvoice(ctx context.Context, customerID string) (string, error) {
	return m.CreateInvoiceFunc(ctx, customerID)
}

func (m *paymentProviderMock) AddLineItem(ctx context.Context, customerID, invoiceID string, amountCents int64, description string) error {
	return m.AddLineItemFunc(ctx, customerID, invoiceID, amountCents, description)
}

func (m *paymentProviderMock) FinalizeInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error) {
	return m.FinalizeInvoiceFunc(ctx, invoiceID)
}

func (m *paymentProviderMock) SendInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error) {
	return m.SendInvoiceFunc(ctx, invoiceID)
}

func (m *paymentProviderMock) GetInvoice(ctx context.Context, invoiceID string) (*provider.Invoice, error) {
	return m.GetInvoiceFunc(ctx, invoiceID)
}

type eventPublisherMock struct {
	PublishFunc func(ctx context.Context, ev realtime.Event) error

	mu     sync.Mutex
	events []realtime.Event
}

func (m *eventPublisherMock) Publish(ctx context.Context, ev realtime.Event) error {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, ev)
	}
	return nil
}

func (m *eventPublisherMock) Published() []realtime.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}
