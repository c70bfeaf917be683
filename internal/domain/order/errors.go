package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order lookups and persistence.
var (
	ErrNotFound = errors.New("order not found")

	// ErrStatusConflict is returned by the repository when the stored status
	// changed between load and persist. The transition must be re-validated
	// against the current state.
	ErrStatusConflict = errors.New("order status changed concurrently")

	// ErrNumberTaken is returned by the repository when a generated order
	// number collides with an existing one. The caller regenerates and
	// retries.
	ErrNumberTaken = errors.New("order number already taken")
)

// ValidationError indicates a malformed or oversized create request,
// rejected before any external call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid order request: " + e.Reason
}

// ProductNotFoundError indicates a requested product does not exist in the
// catalog.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// StockUnavailableError indicates an availability check or reservation
// failed. Any stock reserved before the failure has been released.
type StockUnavailableError struct {
	ProductID   string
	ProductName string
}

func (e *StockUnavailableError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for product %s", name)
}

// PaymentAmountMismatchError indicates the caller supplied a payment amount
// below the computed order total.
type PaymentAmountMismatchError struct {
	Provided decimal.Decimal
	Total    decimal.Decimal
}

func (e *PaymentAmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount %s is below order total %s",
		e.Provided.StringFixed(2), e.Total.StringFixed(2))
}

// InvalidTransitionError indicates a status change not allowed by the
// transition table. The order is left untouched.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}
