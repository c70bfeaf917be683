// Package product defines the read-side contract with the external product
// service. The catalog itself lives in another service; orders only take
// point-in-time snapshots of its data.
package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a snapshot of a catalog item as served by the product service.
type Product struct {
	ID              string
	SKU             string
	Name            string
	Category        string
	Description     string
	ImageURL        string
	Price           decimal.Decimal
	PrepTimeMinutes int
}

// Catalog provides product lookups and stock availability checks against
// the external product service.
type Catalog interface {
	// GetProduct returns the product snapshot, or an error wrapping
	// ErrNotFound when the id is unknown.
	GetProduct(ctx context.Context, id string) (*Product, error)

	// CheckAvailability reports whether at least qty units are in stock.
	CheckAvailability(ctx context.Context, id string, qty int) (bool, error)
}
