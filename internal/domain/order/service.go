package order

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/amankrmj01/bakery-order-service/internal/domain/discount"
	"github.com/amankrmj01/bakery-order-service/internal/domain/inventory"
	"github.com/amankrmj01/bakery-order-service/internal/domain/payment"
	"github.com/amankrmj01/bakery-order-service/internal/domain/product"
)

// maxQuantityPerItem caps a single order line regardless of configuration.
const maxQuantityPerItem = 100

// numberAttempts bounds retries when a generated order number collides.
const numberAttempts = 3

// ItemRequest is one requested order line.
type ItemRequest struct {
	ProductID           string
	Quantity            int
	UnitPriceOverride   *decimal.Decimal
	SpecialInstructions string
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	UserID        string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	DeliveryType        DeliveryType
	DeliveryAddress     string
	DeliveryDate        *time.Time
	SpecialInstructions string

	Items        []ItemRequest
	DiscountCode string

	PaymentMethod  string
	PaymentAmount  decimal.Decimal
	Currency       string
	CardLastFour   string
	CardBrand      string
	CardType       string
	WalletProvider string
	BankName       string
	PaymentNotes   string
}

// Service is the order lifecycle orchestrator. It composes the pricing
// engine, status validator, stock coordinator, and payment orchestrator
// into the create, cancel, and status-update workflows.
type Service struct {
	cfg       Config
	orders    Repository
	catalog   product.Catalog
	stock     *inventory.Coordinator
	payments  *payment.Orchestrator
	discounts discount.Resolver
	lg        *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewService creates a Service with the required collaborators.
func NewService(
	cfg Config,
	orders Repository,
	catalog product.Catalog,
	stock *inventory.Coordinator,
	payments *payment.Orchestrator,
	discounts discount.Resolver,
	lg *zap.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		orders:    orders,
		catalog:   catalog,
		stock:     stock,
		payments:  payments,
		discounts: discounts,
		lg:        lg,
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// Create runs the full order creation workflow: validation, product
// resolution, pricing, limit checks, all-or-nothing stock reservation,
// persistence, and payment initiation.
//
// Any fatal failure after stock was reserved releases the reservation
// before the error is returned; no order row is left behind. Payment
// creation failure is non-fatal: the order is returned in PENDING and
// payment is retried out of band.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	// Preliminary subtotal feeds discount resolution; the pricing engine
	// recomputes it identically afterwards.
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal())
	}
	subtotal = subtotal.Round(2)

	discountAmount := decimal.Zero
	discountPct := decimal.Zero
	if req.DiscountCode != "" {
		d, err := s.discounts.Resolve(ctx, req.DiscountCode, subtotal, len(items))
		if err != nil {
			return nil, errors.Wrap(err, "resolve discount code")
		}
		discountAmount = d.Amount
		discountPct = d.Percentage
	}

	quote := Price(items, discountAmount, req.DeliveryType, s.cfg)

	if s.cfg.MaxOrderValue.IsPositive() && quote.Total.GreaterThan(s.cfg.MaxOrderValue) {
		return nil, &ValidationError{
			Reason: "order value exceeds maximum of " + s.cfg.MaxOrderValue.StringFixed(2),
		}
	}
	if req.PaymentAmount.LessThan(quote.Total) {
		return nil, &PaymentAmountMismatchError{Provided: req.PaymentAmount, Total: quote.Total}
	}

	now := s.now()
	prep := PrepTime(items, s.cfg)
	readyAt := now.Add(time.Duration(prep) * time.Minute)

	o := &Order{
		ID:                   s.newID(),
		OrderNumber:          NewOrderNumber(now),
		UserID:               req.UserID,
		CustomerName:         req.CustomerName,
		CustomerEmail:        req.CustomerEmail,
		CustomerPhone:        req.CustomerPhone,
		Status:               StatusPending,
		DeliveryType:         req.DeliveryType,
		DeliveryAddress:      req.DeliveryAddress,
		DeliveryDate:         req.DeliveryDate,
		SpecialInstructions:  req.SpecialInstructions,
		Items:                items,
		Subtotal:             quote.Subtotal,
		TaxAmount:            quote.TaxAmount,
		DiscountAmount:       quote.DiscountAmount,
		DeliveryFee:          quote.DeliveryFee,
		TotalAmount:          quote.Total,
		DiscountCode:         req.DiscountCode,
		DiscountPercentage:   discountPct,
		EstimatedPrepMinutes: prep,
		EstimatedReadyAt:     &readyAt,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	lines := stockLines(items)
	if err := s.stock.ReserveAll(ctx, o.ID, lines); err != nil {
		var resErr *inventory.ReservationError
		if errors.As(err, &resErr) {
			return nil, &StockUnavailableError{
				ProductID:   resErr.ProductID,
				ProductName: productName(items, resErr.ProductID),
			}
		}
		return nil, errors.Wrap(err, "reserve stock")
	}

	if err := s.persistNew(ctx, o); err != nil {
		// The reservation exists but the order does not: free the hold so
		// stock is not stranded.
		s.stock.ReleaseAll(ctx, o.ID, lines)
		return nil, errors.Wrap(err, "persist order")
	}

	s.payments.CreateForOrder(ctx, payment.Request{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Method:         req.PaymentMethod,
		Amount:         o.TotalAmount,
		Currency:       s.currency(req.Currency),
		Description:    "Payment for order " + o.OrderNumber,
		CardLastFour:   req.CardLastFour,
		CardBrand:      req.CardBrand,
		CardType:       req.CardType,
		WalletProvider: req.WalletProvider,
		BankName:       req.BankName,
		Notes:          req.PaymentNotes,
	})

	s.lg.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("user_id", o.UserID),
		zap.String("total", o.TotalAmount.StringFixed(2)),
	)

	return o, nil
}

// Get returns an order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetByNumber returns an order by its human-readable order number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.orders.GetByNumber(ctx, number)
}

// UpdateStatus applies a validated status transition and its side effect,
// then persists the change guarded by the status it validated against.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status, reason string) (*Order, error) {
	if !ValidStatus(next) {
		return nil, &ValidationError{Reason: "unknown status " + string(next)}
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(o.Status, next); err != nil {
		return nil, err
	}

	from := o.Status
	now := s.now()
	o.Status = next
	o.UpdatedAt = now

	switch next {
	case StatusConfirmed:
		o.ConfirmedAt = &now
		// Converting the reservation into a permanent deduction is part of
		// the confirmation: if it fails the order is not confirmed.
		if err := s.stock.ConsumeAll(ctx, o.ID, stockLines(o.Items)); err != nil {
			return nil, errors.Wrap(err, "consume reserved stock")
		}
	case StatusDelivered:
		o.CompletedAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
		o.CancellationReason = reason
	}

	if err := s.orders.UpdateStatus(ctx, o, from); err != nil {
		if errors.Is(err, ErrStatusConflict) && next == StatusConfirmed {
			// Stock was already consumed for a transition that lost the
			// race. There is no compensating call for consume; flag it for
			// reconciliation.
			s.lg.Error("status conflict after stock consumption, manual reconciliation required",
				zap.String("order_id", o.ID),
				zap.String("from", string(from)),
				zap.String("to", string(next)),
			)
		}
		return nil, err
	}

	s.lg.Info("order status updated",
		zap.String("order_id", o.ID),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)

	return o, nil
}

// Cancel cancels an order that has not yet entered preparation, releasing
// its reserved stock and cancelling any payment. Stock release and payment
// cancellation are best-effort; their failures are logged for out-of-band
// reconciliation and do not block the cancellation.
func (s *Service) Cancel(ctx context.Context, id, reason string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !o.CanBeCancelled() {
		return nil, &InvalidTransitionError{From: o.Status, To: StatusCancelled}
	}

	from := o.Status
	now := s.now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancellationReason = reason
	o.UpdatedAt = now

	// Persist first: the compare-and-swap guarantees exactly one canceller
	// wins, so the compensating calls below run exactly once per order.
	if err := s.orders.UpdateStatus(ctx, o, from); err != nil {
		return nil, err
	}

	s.stock.ReleaseAll(ctx, o.ID, stockLines(o.Items))
	s.payments.CancelForOrder(ctx, o.ID, reason)

	s.lg.Info("order cancelled",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("reason", reason),
	)

	return o, nil
}

// HandlePaymentStatus maps a payment service callback onto the order state
// machine: a completed payment confirms the order, a failed or cancelled
// payment cancels it, and any other status is ignored.
func (s *Service) HandlePaymentStatus(ctx context.Context, orderID, paymentStatus string) error {
	switch strings.ToUpper(paymentStatus) {
	case payment.StatusCompleted:
		_, err := s.UpdateStatus(ctx, orderID, StatusConfirmed, "")
		return err
	case payment.StatusFailed, payment.StatusCancelled:
		_, err := s.Cancel(ctx, orderID, "payment "+strings.ToLower(paymentStatus))
		return err
	default:
		s.lg.Debug("ignoring payment status callback",
			zap.String("order_id", orderID),
			zap.String("payment_status", paymentStatus),
		)
		return nil
	}
}

// ListByUser returns a user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListByStatus returns all orders currently in the given status.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	if !ValidStatus(status) {
		return nil, &ValidationError{Reason: "unknown status " + string(status)}
	}
	return s.orders.ListByStatus(ctx, status)
}

// ListRecent returns orders created in the last given number of days.
func (s *Service) ListRecent(ctx context.Context, days int) ([]*Order, error) {
	if days <= 0 {
		days = 7
	}
	since := s.now().AddDate(0, 0, -days)
	return s.orders.ListRecent(ctx, since)
}

// ListFiltered returns orders matching the filter, newest first.
func (s *Service) ListFiltered(ctx context.Context, f Filter) ([]*Order, error) {
	return s.orders.ListFiltered(ctx, f)
}

// Stats returns aggregate order statistics for a date range.
func (s *Service) Stats(ctx context.Context, from, to time.Time) (*Statistics, error) {
	return s.orders.Stats(ctx, from, to)
}

func (s *Service) validateRequest(req CreateRequest) error {
	switch {
	case req.UserID == "":
		return &ValidationError{Reason: "user id is required"}
	case strings.TrimSpace(req.CustomerName) == "":
		return &ValidationError{Reason: "customer name is required"}
	case strings.TrimSpace(req.CustomerEmail) == "":
		return &ValidationError{Reason: "customer email is required"}
	case len(req.Items) == 0:
		return &ValidationError{Reason: "order must contain at least one item"}
	}

	if max := s.cfg.MaxItemsPerOrder; max > 0 && len(req.Items) > max {
		return &ValidationError{Reason: "order cannot contain more than " + strconv.Itoa(max) + " items"}
	}

	for _, it := range req.Items {
		if it.ProductID == "" {
			return &ValidationError{Reason: "item product id is required"}
		}
		if it.Quantity < 1 || it.Quantity > maxQuantityPerItem {
			return &ValidationError{Reason: "item quantity must be between 1 and " + strconv.Itoa(maxQuantityPerItem)}
		}
		if it.UnitPriceOverride != nil && it.UnitPriceOverride.IsNegative() {
			return &ValidationError{Reason: "unit price override cannot be negative"}
		}
	}

	if req.DeliveryType != DeliveryPickup && req.DeliveryType != DeliveryDelivery {
		return &ValidationError{Reason: "unknown delivery type " + string(req.DeliveryType)}
	}
	if req.DeliveryType == DeliveryDelivery && strings.TrimSpace(req.DeliveryAddress) == "" {
		return &ValidationError{Reason: "delivery address is required for delivery orders"}
	}

	if !req.PaymentAmount.IsPositive() {
		return &ValidationError{Reason: "payment amount must be greater than zero"}
	}

	return nil
}

// resolveItems looks up every product and snapshots its fields onto the
// order lines, failing fast on a missing product or insufficient stock.
func (s *Service) resolveItems(ctx context.Context, reqs []ItemRequest) ([]Item, error) {
	items := make([]Item, 0, len(reqs))
	for _, ir := range reqs {
		p, err := s.catalog.GetProduct(ctx, ir.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				return nil, &ProductNotFoundError{ProductID: ir.ProductID}
			}
			return nil, errors.Wrapf(err, "get product %s", ir.ProductID)
		}

		ok, err := s.catalog.CheckAvailability(ctx, ir.ProductID, ir.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "check availability for product %s", ir.ProductID)
		}
		if !ok {
			return nil, &StockUnavailableError{ProductID: p.ID, ProductName: p.Name}
		}

		unitPrice := p.Price
		if ir.UnitPriceOverride != nil {
			unitPrice = *ir.UnitPriceOverride
		}

		items = append(items, Item{
			ID:                  s.newID(),
			ProductID:           p.ID,
			ProductSKU:          p.SKU,
			ProductName:         p.Name,
			ProductCategory:     p.Category,
			ProductDescription:  p.Description,
			ProductImageURL:     p.ImageURL,
			Quantity:            ir.Quantity,
			UnitPrice:           unitPrice,
			DiscountPerItem:     decimal.Zero,
			PrepTimeMinutes:     p.PrepTimeMinutes,
			SpecialInstructions: ir.SpecialInstructions,
		})
	}
	return items, nil
}

// persistNew saves the order, regenerating the order number when the random
// suffix collides with an existing one.
func (s *Service) persistNew(ctx context.Context, o *Order) error {
	var err error
	for range numberAttempts {
		if err = s.orders.Create(ctx, o); err == nil {
			return nil
		}
		if !errors.Is(err, ErrNumberTaken) {
			return err
		}
		o.OrderNumber = NewOrderNumber(s.now())
	}
	return err
}

func (s *Service) currency(c string) string {
	if c != "" {
		return c
	}
	if s.cfg.Currency != "" {
		return s.cfg.Currency
	}
	return "USD"
}

func stockLines(items []Item) []inventory.Line {
	lines := make([]inventory.Line, len(items))
	for i, it := range items {
		lines[i] = inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	return lines
}

func productName(items []Item, productID string) string {
	for _, it := range items {
		if it.ProductID == productID {
			return it.ProductName
		}
	}
	return ""
}

