// Package payment orchestrates payment creation and cancellation against
// the external payment service. Payments are deliberately loosely coupled
// to orders: a failed payment call never blocks the order workflow, and
// the payment service later drives order status through its callback.
package payment

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no payment exists for an order.
var ErrNotFound = errors.New("payment not found")

// Payment status values reported by the payment service callback.
const (
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
	StatusCancelled = "CANCELLED"
)

// Request carries everything the payment service needs to create a payment
// for a persisted order.
type Request struct {
	OrderID     string
	OrderNumber string
	UserID      string
	Method      string
	Amount      decimal.Decimal
	Currency    string
	Description string

	// Method-specific metadata. Card numbers never transit this service;
	// only the masked tail is carried.
	CardLastFour   string
	CardBrand      string
	CardType       string
	WalletProvider string
	BankName       string
	Notes          string
}

// Payment is the payment service's record as seen by this service.
type Payment struct {
	ID      string
	OrderID string
	Status  string
	Amount  decimal.Decimal
}

// Client is the contract with the external payment service.
type Client interface {
	CreatePayment(ctx context.Context, req Request) (*Payment, error)

	// GetByOrder returns the payment for an order, or an error wrapping
	// ErrNotFound when none exists.
	GetByOrder(ctx context.Context, orderID string) (*Payment, error)

	CancelPayment(ctx context.Context, paymentID, reason string) error
}
