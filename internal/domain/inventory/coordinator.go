package inventory

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// ReservationError reports the line that could not be reserved. Every line
// reserved before it has already been released.
type ReservationError struct {
	ProductID string
	Err       error
}

func (e *ReservationError) Error() string {
	if e.Err != nil {
		return "reserve stock for product " + e.ProductID + ": " + e.Err.Error()
	}
	return "insufficient stock for product " + e.ProductID
}

func (e *ReservationError) Unwrap() error { return e.Err }

// Coordinator batches per-item stock operations and applies the compensation
// protocol: reservations are all-or-nothing, while release and consume are
// best-effort per item.
type Coordinator struct {
	client Client
	lg     *zap.Logger
}

// NewCoordinator creates a Coordinator using the given inventory client.
func NewCoordinator(client Client, lg *zap.Logger) *Coordinator {
	return &Coordinator{client: client, lg: lg}
}

// ReserveAll reserves every line in order. On the first failure it releases
// the already-reserved prefix and returns a ReservationError for the failed
// line; an order is never left partially reserved. Failures during the
// compensating releases are logged, not returned.
func (c *Coordinator) ReserveAll(ctx context.Context, orderID string, lines []Line) error {
	reserved := make([]Line, 0, len(lines))

	for _, line := range lines {
		ok, err := c.client.Reserve(ctx, line.ProductID, line.Quantity)
		if err != nil || !ok {
			c.lg.Warn("stock reservation failed, releasing reserved lines",
				zap.String("order_id", orderID),
				zap.String("product_id", line.ProductID),
				zap.Int("reserved_lines", len(reserved)),
				zap.Error(err),
			)
			c.ReleaseAll(ctx, orderID, reserved)
			return &ReservationError{ProductID: line.ProductID, Err: err}
		}
		reserved = append(reserved, line)
	}

	return nil
}

// ReleaseAll frees the hold on every line. A failed release is logged with
// enough context for out-of-band reconciliation and does not stop the
// remaining lines from being processed.
func (c *Coordinator) ReleaseAll(ctx context.Context, orderID string, lines []Line) {
	for _, line := range lines {
		if err := c.client.Release(ctx, line.ProductID, line.Quantity); err != nil {
			c.lg.Error("failed to release reserved stock",
				zap.String("order_id", orderID),
				zap.String("product_id", line.ProductID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
		}
	}
}

// ConsumeAll converts the hold on every line into a permanent deduction.
// Each line is attempted even when an earlier one fails, but unlike
// ReleaseAll the overall result is fatal to the caller: stock that cannot
// be consumed means the order cannot be confirmed.
func (c *Coordinator) ConsumeAll(ctx context.Context, orderID string, lines []Line) error {
	var firstErr error
	for _, line := range lines {
		err := c.client.Consume(ctx, line.ProductID, line.Quantity)
		if err == nil {
			continue
		}
		c.lg.Error("failed to consume reserved stock",
			zap.String("order_id", orderID),
			zap.String("product_id", line.ProductID),
			zap.Int("quantity", line.Quantity),
			zap.Error(err),
		)
		if firstErr == nil {
			firstErr = errors.Wrapf(err, "consume stock for product %s", line.ProductID)
		}
	}
	return firstErr
}
