package services

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nearmart/nearmart-api/models"
)

// MockPaymentGateway synthesizes payment orders locally. It backs the
// mock payment flow in deployments without a provider and all tests.
type MockPaymentGateway struct {
	mu      sync.Mutex
	created []PaymentOrder
}

// NewMockPaymentGateway creates a new mock gateway
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{}
}

// CreatePaymentOrder synthesizes a gateway order without any network call
func (m *MockPaymentGateway) CreatePaymentOrder(order *models.Order) (*PaymentOrder, error) {
	paymentOrder := PaymentOrder{
		GatewayOrderID: fmt.Sprintf("MOCKORD_%s", uuid.NewString()),
		Amount:         toMinorUnits(order.TotalAmount),
		Currency:       "INR",
		KeyID:          "mock-key",
	}

	m.mu.Lock()
	m.created = append(m.created, paymentOrder)
	m.mu.Unlock()

	return &paymentOrder, nil
}

// CreatedOrders returns the payment orders created so far (for test assertions)
func (m *MockPaymentGateway) CreatedOrders() []PaymentOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PaymentOrder, len(m.created))
	copy(out, m.created)
	return out
}

// NewMockPaymentID synthesizes the payment id recorded by the mock
// payment confirmation path
func NewMockPaymentID() string {
	return fmt.Sprintf("MOCK_%s", uuid.NewString())
}
