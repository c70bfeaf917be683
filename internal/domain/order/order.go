package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order. Transitions between statuses
// are gated by CanTransition; DELIVERED and CANCELLED are terminal.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReady          Status = "READY"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// DeliveryType determines how the customer receives the order.
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "PICKUP"
	DeliveryDelivery DeliveryType = "DELIVERY"
)

// Order is the aggregate root for a customer order. It owns its Items
// exclusively: replacing or deleting the order replaces or deletes them.
type Order struct {
	ID          string
	OrderNumber string
	UserID      string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	Status              Status
	DeliveryType        DeliveryType
	DeliveryAddress     string
	DeliveryDate        *time.Time
	SpecialInstructions string

	Items []Item

	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	DeliveryFee    decimal.Decimal
	TotalAmount    decimal.Decimal

	DiscountCode       string
	DiscountPercentage decimal.Decimal

	EstimatedPrepMinutes int
	EstimatedReadyAt     *time.Time

	CreatedAt          time.Time
	UpdatedAt          time.Time
	ConfirmedAt        *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
}

// Item is a single line of an order. Product fields are snapshots taken at
// order time so historical orders stay accurate when the catalog changes.
type Item struct {
	ID        string
	ProductID string

	ProductSKU         string
	ProductName        string
	ProductCategory    string
	ProductDescription string
	ProductImageURL    string

	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPerItem decimal.Decimal

	PrepTimeMinutes     int
	SpecialInstructions string
}

// EffectiveUnitPrice returns the unit price after the per-item discount.
func (i Item) EffectiveUnitPrice() decimal.Decimal {
	return i.UnitPrice.Sub(i.DiscountPerItem)
}

// Subtotal returns the line total: effective unit price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.EffectiveUnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalPrepTime returns the preparation time for the full quantity.
func (i Item) TotalPrepTime() int {
	return i.PrepTimeMinutes * i.Quantity
}

// CanBeCancelled reports whether the order may still be cancelled.
// Once preparation starts the order is committed.
func (o *Order) CanBeCancelled() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// TotalItems returns the sum of quantities across all lines.
func (o *Order) TotalItems() int {
	total := 0
	for _, it := range o.Items {
		total += it.Quantity
	}
	return total
}

// Filter narrows queries over persisted orders. Zero values mean "any".
type Filter struct {
	UserID       string
	Status       Status
	DeliveryType DeliveryType
	MinAmount    *decimal.Decimal
	MaxAmount    *decimal.Decimal
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
}

// Statistics aggregates persisted orders over a date range. Revenue and the
// average exclude cancelled orders.
type Statistics struct {
	TotalOrders     int64
	PendingOrders   int64
	CompletedOrders int64
	CancelledOrders int64
	TotalRevenue    decimal.Decimal
	AverageValue    decimal.Decimal
}

// Repository defines persistence operations for the order aggregate. An
// order and its items are stored atomically.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)

	// UpdateStatus persists a status change together with the transition's
	// timestamps, guarded by the status the caller validated against. It
	// returns ErrStatusConflict when the stored status no longer matches,
	// so two concurrent writers cannot both apply a transition.
	UpdateStatus(ctx context.Context, o *Order, from Status) error

	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	ListRecent(ctx context.Context, since time.Time) ([]*Order, error)
	ListFiltered(ctx context.Context, f Filter) ([]*Order, error)
	Stats(ctx context.Context, from, to time.Time) (*Statistics, error)
}
