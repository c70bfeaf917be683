package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amankrmj01/bakery-order-service/internal/domain/discount"
)

const (
	findDiscountSQL = `SELECT code, discount_type, value, min_items, description,
		valid_from, valid_until, max_uses, uses
		FROM discounts WHERE code = $1 AND active`

	incrementUsesSQL = `UPDATE discounts SET uses = uses + 1 WHERE code = $1`

	upsertDiscountSQL = `INSERT INTO discounts (code, discount_type, value, min_items, description, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (code) DO UPDATE SET
			discount_type = EXCLUDED.discount_type,
			value = EXCLUDED.value,
			min_items = EXCLUDED.min_items,
			description = EXCLUDED.description,
			active = EXCLUDED.active`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// FindByCode returns the active rule for a code, or discount.ErrInvalidCode
// when the code is unknown or inactive.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Rule, error) {
	rows, err := r.pool.Query(ctx, findDiscountSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrInvalidCode
		}
		return nil, fmt.Errorf("finding discount %q: %w", code, err)
	}
	return rule, nil
}

// IncrementUses bumps the usage counter for a code.
func (r *DiscountRepository) IncrementUses(ctx context.Context, code string) error {
	if _, err := r.pool.Exec(ctx, incrementUsesSQL, code); err != nil {
		return fmt.Errorf("incrementing uses of discount %q: %w", code, err)
	}
	return nil
}

// Upsert inserts or replaces a discount rule. Used by the seeding and
// ingestion tools.
func (r *DiscountRepository) Upsert(ctx context.Context, rule *discount.Rule, active bool) error {
	_, err := r.pool.Exec(ctx, upsertDiscountSQL,
		rule.Code, rule.Type, rule.Value, rule.MinItems, rule.Description, active,
	)
	if err != nil {
		return fmt.Errorf("upserting discount %q: %w", rule.Code, err)
	}
	return nil
}

func scanRule(row pgx.CollectableRow) (*discount.Rule, error) {
	var rule discount.Rule
	err := row.Scan(
		&rule.Code, &rule.Type, &rule.Value, &rule.MinItems, &rule.Description,
		&rule.ValidFrom, &rule.ValidUntil, &rule.MaxUses, &rule.Uses,
	)
	return &rule, err
}
