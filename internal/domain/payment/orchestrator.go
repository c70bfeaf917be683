package payment

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
)

// Orchestrator wraps the payment client with the service's fatal/non-fatal
// classification: payment failures are logged for out-of-band retry and
// never propagate into the order workflow.
type Orchestrator struct {
	client Client
	lg     *zap.Logger
}

// NewOrchestrator creates an Orchestrator using the given payment client.
func NewOrchestrator(client Client, lg *zap.Logger) *Orchestrator {
	return &Orchestrator{client: client, lg: lg}
}

// CreateForOrder requests payment creation for a freshly persisted order.
// Failure is non-fatal: the order stays PENDING and payment is retried out
// of band, so no error is returned.
func (o *Orchestrator) CreateForOrder(ctx context.Context, req Request) {
	p, err := o.client.CreatePayment(ctx, req)
	if err != nil {
		o.lg.Error("failed to create payment, order remains pending",
			zap.String("order_id", req.OrderID),
			zap.String("order_number", req.OrderNumber),
			zap.Error(err),
		)
		return
	}

	o.lg.Info("payment created",
		zap.String("order_id", req.OrderID),
		zap.String("payment_id", p.ID),
	)
}

// CancelForOrder looks up the order's payment and requests its cancellation
// when one exists. Both the lookup and the cancellation are best-effort:
// failures are logged and do not block the order cancellation.
func (o *Orchestrator) CancelForOrder(ctx context.Context, orderID, reason string) {
	p, err := o.client.GetByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return
		}
		o.lg.Error("failed to look up payment for cancelled order",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	if err := o.client.CancelPayment(ctx, p.ID, reason); err != nil {
		o.lg.Error("failed to cancel payment",
			zap.String("order_id", orderID),
			zap.String("payment_id", p.ID),
			zap.Error(err),
		)
		return
	}

	o.lg.Info("payment cancelled",
		zap.String("order_id", orderID),
		zap.String("payment_id", p.ID),
	)
}
