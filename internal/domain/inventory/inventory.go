// Package inventory coordinates stock reservations against the external
// inventory service. A reservation is a temporary hold that is later
// consumed (permanent deduction) or released (freed).
package inventory

import "context"

// Line pairs a product with the quantity to reserve, release, or consume.
type Line struct {
	ProductID string
	Quantity  int
}

// Client is the contract with the external inventory service. All calls are
// per product: batching is the coordinator's job.
type Client interface {
	// Reserve places a hold on qty units. It returns false with a nil error
	// when the service answered but stock was insufficient.
	Reserve(ctx context.Context, productID string, qty int) (bool, error)

	// Release frees a previous hold.
	Release(ctx context.Context, productID string, qty int) error

	// Consume converts a hold into a permanent deduction.
	Consume(ctx context.Context, productID string, qty int) error
}
