package order

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amankrmj01/bakery-order-service/internal/domain/discount"
	"github.com/amankrmj01/bakery-order-service/internal/domain/inventory"
	"github.com/amankrmj01/bakery-order-service/internal/domain/payment"
	"github.com/amankrmj01/bakery-order-service/internal/domain/product"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID map[string]*Order

	created      []*Order
	createErrs   []error // consumed one per Create call
	updated      []*Order
	updatedFrom  []Status
	updateErr    error
	listedSince  time.Time
	listedStatus Status
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	copied := *o
	m.created = append(m.created, &copied)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockOrderRepo) GetByNumber(_ context.Context, number string) (*Order, error) {
	for _, o := range m.byID {
		if o.OrderNumber == number {
			copied := *o
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, o *Order, from Status) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *o
	m.updated = append(m.updated, &copied)
	m.updatedFrom = append(m.updatedFrom, from)
	if stored, ok := m.byID[o.ID]; ok {
		*stored = copied
	}
	return nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, _ string) ([]*Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) ListByStatus(_ context.Context, status Status) ([]*Order, error) {
	m.listedStatus = status
	return nil, nil
}

func (m *mockOrderRepo) ListRecent(_ context.Context, since time.Time) ([]*Order, error) {
	m.listedSince = since
	return nil, nil
}

func (m *mockOrderRepo) ListFiltered(_ context.Context, _ Filter) ([]*Order, error) {
	return nil, nil
}

func (m *mockOrderRepo) Stats(_ context.Context, _, _ time.Time) (*Statistics, error) {
	return &Statistics{}, nil
}

type mockCatalog struct {
	byID        map[string]*product.Product
	unavailable map[string]bool
	getErr      error
}

func (m *mockCatalog) GetProduct(_ context.Context, id string) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockCatalog) CheckAvailability(_ context.Context, id string, _ int) (bool, error) {
	return !m.unavailable[id], nil
}

type stockCall struct {
	productID string
	qty       int
}

type mockStockClient struct {
	reserved []stockCall
	released []stockCall
	consumed []stockCall

	denyReserve map[string]bool
	reserveErr  error
	consumeErr  error
}

func (m *mockStockClient) Reserve(_ context.Context, productID string, qty int) (bool, error) {
	if m.reserveErr != nil {
		return false, m.reserveErr
	}
	if m.denyReserve[productID] {
		return false, nil
	}
	m.reserved = append(m.reserved, stockCall{productID, qty})
	return true, nil
}

func (m *mockStockClient) Release(_ context.Context, productID string, qty int) error {
	m.released = append(m.released, stockCall{productID, qty})
	return nil
}

func (m *mockStockClient) Consume(_ context.Context, productID string, qty int) error {
	if m.consumeErr != nil {
		return m.consumeErr
	}
	m.consumed = append(m.consumed, stockCall{productID, qty})
	return nil
}

type mockPaymentClient struct {
	created    []payment.Request
	createErr  error
	existing   *payment.Payment
	cancelled  []string
	cancelErrs error
}

func (m *mockPaymentClient) CreatePayment(_ context.Context, req payment.Request) (*payment.Payment, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, req)
	return &payment.Payment{ID: "pay-1", OrderID: req.OrderID, Amount: req.Amount}, nil
}

func (m *mockPaymentClient) GetByOrder(_ context.Context, orderID string) (*payment.Payment, error) {
	if m.existing == nil {
		return nil, payment.ErrNotFound
	}
	return m.existing, nil
}

func (m *mockPaymentClient) CancelPayment(_ context.Context, paymentID, _ string) error {
	if m.cancelErrs != nil {
		return m.cancelErrs
	}
	m.cancelled = append(m.cancelled, paymentID)
	return nil
}

type mockResolver struct {
	discount *discount.Discount
	err      error

	gotCode     string
	gotSubtotal decimal.Decimal
	gotItems    int
}

func (m *mockResolver) Resolve(_ context.Context, code string, subtotal decimal.Decimal, itemCount int) (*discount.Discount, error) {
	m.gotCode = code
	m.gotSubtotal = subtotal
	m.gotItems = itemCount
	if m.err != nil {
		return nil, m.err
	}
	return m.discount, nil
}

// --- Helpers ---

type testEnv struct {
	svc      *Service
	repo     *mockOrderRepo
	catalog  *mockCatalog
	stock    *mockStockClient
	payments *mockPaymentClient
	resolver *mockResolver
	now      time.Time
}

func newTestProduct(id, name, price string, prepMinutes int) *product.Product {
	return &product.Product{
		ID:              id,
		SKU:             "SKU-" + id,
		Name:            name,
		Category:        "pastry",
		Price:           decimal.RequireFromString(price),
		PrepTimeMinutes: prepMinutes,
	}
}

func newEnv(products ...*product.Product) *testEnv {
	byID := make(map[string]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	env := &testEnv{
		repo:     &mockOrderRepo{byID: make(map[string]*Order)},
		catalog:  &mockCatalog{byID: byID, unavailable: make(map[string]bool)},
		stock:    &mockStockClient{denyReserve: make(map[string]bool)},
		payments: &mockPaymentClient{},
		resolver: &mockResolver{},
		now:      time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
	}

	lg := zap.NewNop()
	env.svc = NewService(
		testConfig(),
		env.repo,
		env.catalog,
		inventory.NewCoordinator(env.stock, lg),
		payment.NewOrchestrator(env.payments, lg),
		env.resolver,
		lg,
	)
	env.svc.now = func() time.Time { return env.now }

	id := 0
	env.svc.newID = func() string {
		id++
		return "id-" + strconv.Itoa(id)
	}

	return env
}

func validRequest() CreateRequest {
	return CreateRequest{
		UserID:        "user-1",
		CustomerName:  "Jamie Baker",
		CustomerEmail: "jamie@example.com",
		DeliveryType:  DeliveryPickup,
		Items: []ItemRequest{
			{ProductID: "p1", Quantity: 2},
		},
		PaymentMethod: "CREDIT_CARD",
		PaymentAmount: decimal.RequireFromString("999.00"),
	}
}

// --- Create ---

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing user id", func(r *CreateRequest) { r.UserID = "" }},
		{"missing customer name", func(r *CreateRequest) { r.CustomerName = "  " }},
		{"missing customer email", func(r *CreateRequest) { r.CustomerEmail = "" }},
		{"no items", func(r *CreateRequest) { r.Items = nil }},
		{"zero quantity", func(r *CreateRequest) { r.Items[0].Quantity = 0 }},
		{"quantity above cap", func(r *CreateRequest) { r.Items[0].Quantity = 101 }},
		{"missing item product id", func(r *CreateRequest) { r.Items[0].ProductID = "" }},
		{"negative price override", func(r *CreateRequest) {
			neg := decimal.RequireFromString("-1.00")
			r.Items[0].UnitPriceOverride = &neg
		}},
		{"unknown delivery type", func(r *CreateRequest) { r.DeliveryType = "DRONE" }},
		{"delivery without address", func(r *CreateRequest) { r.DeliveryType = DeliveryDelivery }},
		{"zero payment amount", func(r *CreateRequest) { r.PaymentAmount = decimal.Zero }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(newTestProduct("p1", "Croissant", "3.50", 10))
			req := validRequest()
			tt.mutate(&req)

			_, err := env.svc.Create(context.Background(), req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Empty(t, env.repo.created, "nothing should be persisted")
			assert.Empty(t, env.stock.reserved, "nothing should be reserved")
		})
	}
}

func TestCreate_TooManyItems(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "3.50", 10))
	req := validRequest()
	req.Items = nil
	for range 51 {
		req.Items = append(req.Items, ItemRequest{ProductID: "p1", Quantity: 1})
	}

	_, err := env.svc.Create(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCreate_ProductNotFound(t *testing.T) {
	env := newEnv()

	_, err := env.svc.Create(context.Background(), validRequest())

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, "p1", pnfErr.ProductID)
}

func TestCreate_StockUnavailable(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "3.50", 10))
	env.catalog.unavailable["p1"] = true

	_, err := env.svc.Create(context.Background(), validRequest())

	var suErr *StockUnavailableError
	require.ErrorAs(t, err, &suErr)
	assert.Equal(t, "p1", suErr.ProductID)
	assert.Equal(t, "Croissant", suErr.ProductName)
}

func TestCreate_Pickup(t *testing.T) {
	env := newEnv(
		newTestProduct("p1", "Croissant", "3.50", 10),
		newTestProduct("p2", "Sourdough Loaf", "8.00", 45),
	)
	req := validRequest()
	req.Items = []ItemRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}

	o, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, ValidOrderNumber(o.OrderNumber))
	assert.Equal(t, "15.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "1.20", o.TaxAmount.StringFixed(2))
	assert.Equal(t, "0.00", o.DeliveryFee.StringFixed(2))
	assert.Equal(t, "16.20", o.TotalAmount.StringFixed(2))
	assert.Equal(t, 45, o.EstimatedPrepMinutes)
	require.NotNil(t, o.EstimatedReadyAt)
	assert.Equal(t, env.now.Add(45*time.Minute), *o.EstimatedReadyAt)

	// Product snapshot on the line.
	require.Len(t, o.Items, 2)
	assert.Equal(t, "SKU-p1", o.Items[0].ProductSKU)
	assert.Equal(t, "Croissant", o.Items[0].ProductName)

	// Stock reserved for every line.
	require.Len(t, env.stock.reserved, 2)
	assert.Equal(t, stockCall{"p1", 2}, env.stock.reserved[0])
	assert.Equal(t, stockCall{"p2", 1}, env.stock.reserved[1])

	// Order persisted and payment initiated.
	require.Len(t, env.repo.created, 1)
	require.Len(t, env.payments.created, 1)
	assert.Equal(t, o.ID, env.payments.created[0].OrderID)
	assert.True(t, o.TotalAmount.Equal(env.payments.created[0].Amount))
	assert.Equal(t, "USD", env.payments.created[0].Currency)
}

func TestCreate_DeliveryFeeApplied(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "10.00", 10))
	req := validRequest()
	req.DeliveryType = DeliveryDelivery
	req.DeliveryAddress = "12 Rye Lane"

	o, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "5.00", o.DeliveryFee.StringFixed(2))
	assert.Equal(t, "26.60", o.TotalAmount.StringFixed(2)) // 20 + 1.6 tax + 5 fee
}

func TestCreate_WithDiscountCode(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "10.00", 10))
	env.resolver.discount = &discount.Discount{
		Amount:      decimal.RequireFromString("2.00"),
		Percentage:  decimal.RequireFromString("10"),
		Description: "10% off",
	}
	req := validRequest()
	req.DiscountCode = "WELCOME10"

	o, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "WELCOME10", env.resolver.gotCode)
	assert.Equal(t, "20.00", env.resolver.gotSubtotal.StringFixed(2))
	assert.Equal(t, 1, env.resolver.gotItems)

	assert.Equal(t, "2.00", o.DiscountAmount.StringFixed(2))
	assert.Equal(t, "10", o.DiscountPercentage.String())
	assert.Equal(t, "19.44", o.TotalAmount.StringFixed(2)) // 18 + 1.44 tax
}

func TestCreate_InvalidDiscountCode(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "10.00", 10))
	env.resolver.err = discount.ErrInvalidCode
	req := validRequest()
	req.DiscountCode = "BOGUS"

	_, err := env.svc.Create(context.Background(), req)

	require.ErrorIs(t, err, discount.ErrInvalidCode)
	assert.Empty(t, env.stock.reserved, "no stock reserved for a rejected order")
	assert.Empty(t, env.repo.created)
}

func TestCreate_PaymentAmountTooLow(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "10.00", 10))
	req := validRequest()
	req.PaymentAmount = decimal.RequireFromString("10.00") // total is 21.60

	_, err := env.svc.Create(context.Background(), req)

	var mErr *PaymentAmountMismatchError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, "10.00", mErr.Provided.StringFixed(2))
	assert.Equal(t, "21.60", mErr.Total.StringFixed(2))
}

func TestCreate_MaxOrderValueExceeded(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Wedding Cake", "500.00", 120))
	req := validRequest()
	req.Items = []ItemRequest{{ProductID: "p1", Quantity: 25}} // 12500 > 10000
	req.PaymentAmount = decimal.RequireFromString("20000.00")

	_, err := env.svc.Create(context.Background(), req)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, env.stock.reserved)
}

func TestCreate_PriceOverride(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "10.00", 10))
	override := decimal.RequireFromString("7.50")
	req := validRequest()
	req.Items = []ItemRequest{{ProductID: "p1", Quantity: 2, UnitPriceOverride: &override}}

	o, err := env.svc.Create(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "15.00", o.Subtotal.StringFixed(2))
	assert.Equal(t, "7.50", o.Items[0].UnitPrice.StringFixed(2))
}

func TestCreate_ReservationFailureReleasesPriorHolds(t *testing.T) {
	env := newEnv(
		newTestProduct("p1", "Croissant", "3.50", 10),
		newTestProduct("p2", "Sourdough Loaf", "8.00", 45),
	)
	env.stock.denyReserve["p2"] = true
	req := validRequest()
	req.Items = []ItemRequest{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	}

	_, err := env.svc.Create(context.Background(), req)

	var suErr *StockUnavailableError
	require.ErrorAs(t, err, &suErr)
	assert.Equal(t, "p2", suErr.ProductID)
	assert.Equal(t, "Sourdough Loaf", suErr.ProductName)

	// The first line's hold must be rolled back.
	require.Len(t, env.stock.released, 1)
	assert.Equal(t, stockCall{"p1", 2}, env.stock.released[0])
	assert.Empty(t, env.repo.created)
	assert.Empty(t, env.payments.created)
}

func TestCreate_PersistFailureReleasesStock(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "3.50", 10))
	env.repo.createErrs = []error{errors.New("connection reset")}

	_, err := env.svc.Create(context.Background(), validRequest())

	require.Error(t, err)
	require.Len(t, env.stock.released, 1)
	assert.Equal(t, stockCall{"p1", 2}, env.stock.released[0])
	assert.Empty(t, env.payments.created)
}

func TestCreate_RetriesOnNumberCollision(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "3.50", 10))
	env.repo.createErrs = []error{ErrNumberTaken, nil}

	o, err := env.svc.Create(context.Background(), validRequest())

	require.NoError(t, err)
	require.Len(t, env.repo.created, 1)
	assert.True(t, ValidOrderNumber(o.OrderNumber))
	assert.Empty(t, env.stock.released, "successful retry should not release stock")
}

func TestCreate_GivesUpAfterRepeatedCollisions(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "3.50", 10))
	env.repo.createErrs = []error{ErrNumberTaken, ErrNumberTaken, ErrNumberTaken}

	_, err := env.svc.Create(context.Background(), validRequest())

	require.ErrorIs(t, err, ErrNumberTaken)
	require.Len(t, env.stock.released, 1, "stock must be freed when persistence gives up")
}

func TestCreate_PaymentFailureIsNonFatal(t *testing.T) {
	env := newEnv(newTestProduct("p1", "Croissant", "3.50", 10))
	env.payments.createErr = errors.New("payment service down")

	o, err := env.svc.Create(context.Background(), validRequest())

	require.NoError(t, err, "payment initiation failure must not fail order creation")
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, env.repo.created, 1)
}

// --- UpdateStatus ---

func storedOrder(env *testEnv, status Status) *Order {
	o := &Order{
		ID:          "ord-1",
		OrderNumber: "ORD-20250314-1042",
		UserID:      "user-1",
		Status:      status,
		Items: []Item{{
			ID:        "item-1",
			ProductID: "p1",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("3.50"),
		}},
		TotalAmount: decimal.RequireFromString("7.56"),
		CreatedAt:   env.now.Add(-time.Hour),
		UpdatedAt:   env.now.Add(-time.Hour),
	}
	env.repo.byID[o.ID] = o
	return o
}

func TestUpdateStatus_Confirm(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)

	o, err := env.svc.UpdateStatus(context.Background(), "ord-1", StatusConfirmed, "")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, o.Status)
	require.NotNil(t, o.ConfirmedAt)
	assert.Equal(t, env.now, *o.ConfirmedAt)

	// Confirmation converts the reservation into a deduction.
	require.Len(t, env.stock.consumed, 1)
	assert.Equal(t, stockCall{"p1", 2}, env.stock.consumed[0])

	// The persisted change is guarded by the validated status.
	require.Len(t, env.repo.updated, 1)
	assert.Equal(t, StatusPending, env.repo.updatedFrom[0])
}

func TestUpdateStatus_Deliver(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusReady)

	o, err := env.svc.UpdateStatus(context.Background(), "ord-1", StatusDelivered, "")
	require.NoError(t, err)

	assert.Equal(t, StatusDelivered, o.Status)
	require.NotNil(t, o.CompletedAt)
	assert.Empty(t, env.stock.consumed, "consume happens at confirmation, not delivery")
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)

	_, err := env.svc.UpdateStatus(context.Background(), "ord-1", StatusReady, "")

	var itErr *InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, StatusPending, itErr.From)
	assert.Equal(t, StatusReady, itErr.To)
	assert.Empty(t, env.repo.updated)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)

	_, err := env.svc.UpdateStatus(context.Background(), "ord-1", Status("SHIPPED"), "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	env := newEnv()

	_, err := env.svc.UpdateStatus(context.Background(), "missing", StatusConfirmed, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_ConsumeFailureBlocksConfirmation(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)
	env.stock.consumeErr = errors.New("inventory unavailable")

	_, err := env.svc.UpdateStatus(context.Background(), "ord-1", StatusConfirmed, "")

	require.Error(t, err)
	assert.Empty(t, env.repo.updated, "order must not be confirmed when consumption fails")
	assert.Equal(t, StatusPending, env.repo.byID["ord-1"].Status)
}

func TestUpdateStatus_ConflictPropagates(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)
	env.repo.updateErr = ErrStatusConflict

	_, err := env.svc.UpdateStatus(context.Background(), "ord-1", StatusConfirmed, "")
	require.ErrorIs(t, err, ErrStatusConflict)
}

// --- Cancel ---

func TestCancel_Pending(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)
	env.payments.existing = &payment.Payment{ID: "pay-1", OrderID: "ord-1"}

	o, err := env.svc.Cancel(context.Background(), "ord-1", "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "changed my mind", o.CancellationReason)
	require.NotNil(t, o.CancelledAt)

	// Reserved stock is freed and the payment cancelled.
	require.Len(t, env.stock.released, 1)
	assert.Equal(t, stockCall{"p1", 2}, env.stock.released[0])
	assert.Equal(t, []string{"pay-1"}, env.payments.cancelled)
}

func TestCancel_NoPaymentYet(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusConfirmed)

	o, err := env.svc.Cancel(context.Background(), "ord-1", "")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, o.Status)
	assert.Empty(t, env.payments.cancelled)
}

func TestCancel_AfterPreparationStarts(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPreparing)

	_, err := env.svc.Cancel(context.Background(), "ord-1", "too late")

	var itErr *InvalidTransitionError
	require.ErrorAs(t, err, &itErr)
	assert.Equal(t, StatusPreparing, itErr.From)
	assert.Empty(t, env.stock.released)
}

func TestCancel_LosingRacerDoesNotCompensate(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)
	env.repo.updateErr = ErrStatusConflict

	_, err := env.svc.Cancel(context.Background(), "ord-1", "duplicate click")

	require.ErrorIs(t, err, ErrStatusConflict)
	assert.Empty(t, env.stock.released, "loser must not release stock")
	assert.Empty(t, env.payments.cancelled, "loser must not cancel the payment")
}

// --- Payment callbacks ---

func TestHandlePaymentStatus_CompletedConfirms(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)

	err := env.svc.HandlePaymentStatus(context.Background(), "ord-1", "COMPLETED")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, env.repo.byID["ord-1"].Status)
	require.Len(t, env.stock.consumed, 1)
}

func TestHandlePaymentStatus_FailedCancels(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)

	err := env.svc.HandlePaymentStatus(context.Background(), "ord-1", "failed")
	require.NoError(t, err)

	o := env.repo.byID["ord-1"]
	assert.Equal(t, StatusCancelled, o.Status)
	assert.Equal(t, "payment failed", o.CancellationReason)
}

func TestHandlePaymentStatus_UnknownIgnored(t *testing.T) {
	env := newEnv()
	storedOrder(env, StatusPending)

	err := env.svc.HandlePaymentStatus(context.Background(), "ord-1", "PROCESSING")
	require.NoError(t, err)

	assert.Equal(t, StatusPending, env.repo.byID["ord-1"].Status)
	assert.Empty(t, env.repo.updated)
}

// --- Read operations ---

func TestListRecent_DefaultWindow(t *testing.T) {
	env := newEnv()

	_, err := env.svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, env.now.AddDate(0, 0, -7), env.repo.listedSince)

	_, err = env.svc.ListRecent(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, env.now.AddDate(0, 0, -30), env.repo.listedSince)
}

func TestListByStatus_RejectsUnknown(t *testing.T) {
	env := newEnv()

	_, err := env.svc.ListByStatus(context.Background(), Status("SHIPPED"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
