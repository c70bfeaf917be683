package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/amankrmj01/bakery-order-service/internal/domain/order"
)

const orderColumns = `id, order_number, user_id, customer_name, customer_email, customer_phone,
	status, delivery_type, delivery_address, delivery_date, special_instructions,
	subtotal, tax_amount, discount_amount, delivery_fee, total_amount,
	discount_code, discount_percentage, estimated_prep_minutes, estimated_ready_at,
	created_at, updated_at, confirmed_at, completed_at, cancelled_at, cancellation_reason`

const (
	insertOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`

	insertItemSQL = `INSERT INTO order_items (id, order_id, product_id, product_sku, product_name,
		product_category, product_description, product_image_url, quantity, unit_price,
		discount_per_item, prep_time_minutes, special_instructions, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	getOrderByIDSQL     = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	getOrderByNumberSQL = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	listItemsSQL = `SELECT id, product_id, product_sku, product_name, product_category,
		product_description, product_image_url, quantity, unit_price, discount_per_item,
		prep_time_minutes, special_instructions
		FROM order_items WHERE order_id = $1 ORDER BY position`

	// The WHERE clause on status is the optimistic guard: a concurrent
	// transition changes the stored status and makes this a no-op.
	updateStatusSQL = `UPDATE orders SET status = $1, updated_at = $2,
		confirmed_at = $3, completed_at = $4, cancelled_at = $5, cancellation_reason = $6
		WHERE id = $7 AND status = $8`

	listByUserSQL   = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	listByStatusSQL = `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC`
	listRecentSQL   = `SELECT ` + orderColumns + ` FROM orders WHERE created_at >= $1 ORDER BY created_at DESC`

	statsSQL = `SELECT
		COUNT(*),
		COUNT(*) FILTER (WHERE status = 'PENDING'),
		COUNT(*) FILTER (WHERE status = 'DELIVERED'),
		COUNT(*) FILTER (WHERE status = 'CANCELLED'),
		COALESCE(SUM(total_amount) FILTER (WHERE status <> 'CANCELLED'), 0)
		FROM orders WHERE created_at BETWEEN $1 AND $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. The
// order row and its item rows are written in one transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order together with all of its items.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.OrderNumber, o.UserID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.Status, o.DeliveryType, o.DeliveryAddress, o.DeliveryDate, o.SpecialInstructions,
		o.Subtotal, o.TaxAmount, o.DiscountAmount, o.DeliveryFee, o.TotalAmount,
		o.DiscountCode, o.DiscountPercentage, o.EstimatedPrepMinutes, o.EstimatedReadyAt,
		o.CreatedAt, o.UpdatedAt, o.ConfirmedAt, o.CompletedAt, o.CancelledAt, o.CancellationReason,
	)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return order.ErrNumberTaken
		}
		return fmt.Errorf("inserting order %q: %w", o.ID, err)
	}

	for i, it := range o.Items {
		_, err = tx.Exec(ctx, insertItemSQL,
			it.ID, o.ID, it.ProductID, it.ProductSKU, it.ProductName,
			it.ProductCategory, it.ProductDescription, it.ProductImageURL,
			it.Quantity, it.UnitPrice, it.DiscountPerItem, it.PrepTimeMinutes,
			it.SpecialInstructions, i,
		)
		if err != nil {
			return fmt.Errorf("inserting item %q for order %q: %w", it.ProductID, o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns a single order with its items loaded.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	return r.getOne(ctx, getOrderByIDSQL, id)
}

// GetByNumber returns a single order by its order number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	return r.getOne(ctx, getOrderByNumberSQL, number)
}

// UpdateStatus persists a status change guarded by the previous status. It
// returns order.ErrStatusConflict when the stored status no longer matches
// from, so exactly one of two concurrent writers succeeds.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order, from order.Status) error {
	tag, err := r.pool.Exec(ctx, updateStatusSQL,
		o.Status, o.UpdatedAt, o.ConfirmedAt, o.CompletedAt, o.CancelledAt, o.CancellationReason,
		o.ID, from,
	)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the order vanished or its status moved under us.
		if _, err := r.getOne(ctx, getOrderByIDSQL, o.ID); err != nil {
			return err
		}
		return order.ErrStatusConflict
	}
	return nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.list(ctx, listByUserSQL, userID)
}

// ListByStatus returns orders in the given status, newest first.
func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return r.list(ctx, listByStatusSQL, status)
}

// ListRecent returns orders created at or after since, newest first.
func (r *OrderRepository) ListRecent(ctx context.Context, since time.Time) ([]*order.Order, error) {
	return r.list(ctx, listRecentSQL, since)
}

// ListFiltered returns orders matching all set fields of the filter.
func (r *OrderRepository) ListFiltered(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+"$"+strconv.Itoa(len(args)))
	}

	if f.UserID != "" {
		add("user_id = ", f.UserID)
	}
	if f.Status != "" {
		add("status = ", f.Status)
	}
	if f.DeliveryType != "" {
		add("delivery_type = ", f.DeliveryType)
	}
	if f.MinAmount != nil {
		add("total_amount >= ", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		add("total_amount <= ", *f.MaxAmount)
	}
	if f.CreatedFrom != nil {
		add("created_at >= ", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		add("created_at <= ", *f.CreatedTo)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	return r.list(ctx, query, args...)
}

// Stats aggregates order counts and revenue over a date range. Revenue and
// the average exclude cancelled orders.
func (r *OrderRepository) Stats(ctx context.Context, from, to time.Time) (*order.Statistics, error) {
	var s order.Statistics
	err := r.pool.QueryRow(ctx, statsSQL, from, to).Scan(
		&s.TotalOrders, &s.PendingOrders, &s.CompletedOrders, &s.CancelledOrders, &s.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("querying order statistics: %w", err)
	}

	if s.TotalOrders > 0 {
		s.AverageValue = s.TotalRevenue.Div(decimal.NewFromInt(s.TotalOrders)).Round(2)
	} else {
		s.AverageValue = decimal.Zero
	}
	return &s, nil
}

func (r *OrderRepository) getOne(ctx context.Context, query string, arg any) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order: %w", err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]*order.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	for _, o := range orders {
		items, err := r.loadItems(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return orders, nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, listItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("loading items for order %q: %w", orderID, err)
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("loading items for order %q: %w", orderID, err)
	}
	return items, nil
}

func scanOrder(row pgx.CollectableRow) (*order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.Status, &o.DeliveryType, &o.DeliveryAddress, &o.DeliveryDate, &o.SpecialInstructions,
		&o.Subtotal, &o.TaxAmount, &o.DiscountAmount, &o.DeliveryFee, &o.TotalAmount,
		&o.DiscountCode, &o.DiscountPercentage, &o.EstimatedPrepMinutes, &o.EstimatedReadyAt,
		&o.CreatedAt, &o.UpdatedAt, &o.ConfirmedAt, &o.CompletedAt, &o.CancelledAt, &o.CancellationReason,
	)
	return &o, err
}

func scanItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.ID, &it.ProductID, &it.ProductSKU, &it.ProductName, &it.ProductCategory,
		&it.ProductDescription, &it.ProductImageURL, &it.Quantity, &it.UnitPrice,
		&it.DiscountPerItem, &it.PrepTimeMinutes, &it.SpecialInstructions,
	)
	return it, err
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}
