package payment

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockClient struct {
	created   []Request
	createErr error

	existing  *Payment
	getErr    error
	cancelled []string
	cancelErr error
}

func (m *mockClient) CreatePayment(_ context.Context, req Request) (*Payment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, req)
	return &Payment{ID: "pay-1", OrderID: req.OrderID, Amount: req.Amount}, nil
}

func (m *mockClient) GetByOrder(_ context.Context, _ string) (*Payment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.existing == nil {
		return nil, ErrNotFound
	}
	return m.existing, nil
}

func (m *mockClient) CancelPayment(_ context.Context, paymentID, _ string) error {
	if m.cancelErr != nil {
		return m.cancelErr
	}
	m.cancelled = append(m.cancelled, paymentID)
	return nil
}

func testRequest() Request {
	return Request{
		OrderID:     "ord-1",
		OrderNumber: "ORD-20250314-1042",
		UserID:      "user-1",
		Method:      "CREDIT_CARD",
		Amount:      decimal.RequireFromString("16.20"),
		Currency:    "USD",
	}
}

func TestCreateForOrder(t *testing.T) {
	client := &mockClient{}
	o := NewOrchestrator(client, zap.NewNop())

	o.CreateForOrder(context.Background(), testRequest())

	assert.Len(t, client.created, 1)
	assert.Equal(t, "ord-1", client.created[0].OrderID)
}

func TestCreateForOrder_FailureSwallowed(t *testing.T) {
	client := &mockClient{createErr: errors.New("payment service down")}
	o := NewOrchestrator(client, zap.NewNop())

	// Must not panic or propagate: the order stays pending.
	o.CreateForOrder(context.Background(), testRequest())

	assert.Empty(t, client.created)
}

func TestCancelForOrder(t *testing.T) {
	client := &mockClient{existing: &Payment{ID: "pay-1", OrderID: "ord-1"}}
	o := NewOrchestrator(client, zap.NewNop())

	o.CancelForOrder(context.Background(), "ord-1", "customer cancelled")

	assert.Equal(t, []string{"pay-1"}, client.cancelled)
}

func TestCancelForOrder_NoPayment(t *testing.T) {
	client := &mockClient{}
	o := NewOrchestrator(client, zap.NewNop())

	o.CancelForOrder(context.Background(), "ord-1", "customer cancelled")

	assert.Empty(t, client.cancelled)
}

func TestCancelForOrder_LookupFailureSwallowed(t *testing.T) {
	client := &mockClient{getErr: errors.New("timeout")}
	o := NewOrchestrator(client, zap.NewNop())

	o.CancelForOrder(context.Background(), "ord-1", "customer cancelled")

	assert.Empty(t, client.cancelled)
}

func TestCancelForOrder_CancelFailureSwallowed(t *testing.T) {
	client := &mockClient{
		existing:  &Payment{ID: "pay-1", OrderID: "ord-1"},
		cancelErr: errors.New("already settled"),
	}
	o := NewOrchestrator(client, zap.NewNop())

	o.CancelForOrder(context.Background(), "ord-1", "customer cancelled")

	assert.Empty(t, client.cancelled)
}
