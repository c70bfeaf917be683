// Package discount resolves discount codes supplied at order creation into
// a concrete monetary discount.
package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage applies a percentage of the order subtotal.
	TypePercentage Type = "percentage"
	// TypeFixed applies a fixed monetary amount capped at the subtotal.
	TypeFixed Type = "fixed"
)

var (
	// ErrInvalidCode is returned when a discount code is unknown or the
	// order does not satisfy the rule's minimum item requirement.
	ErrInvalidCode = errors.New("invalid discount code")
	// ErrExpired is returned when a code is outside its valid time window.
	ErrExpired = errors.New("discount code expired")
	// ErrUsageLimitReached is returned when a code has exhausted its uses.
	ErrUsageLimitReached = errors.New("discount code usage limit reached")
)

// Rule defines a discount code's behaviour and eligibility constraints.
type Rule struct {
	Code        string
	Type        Type
	Value       decimal.Decimal
	MinItems    int
	Description string
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	MaxUses     int
	Uses        int
}

// Discount is a resolved discount ready to feed into pricing. Percentage is
// zero for fixed-amount rules.
type Discount struct {
	Amount      decimal.Decimal
	Percentage  decimal.Decimal
	Description string
}

// Repository provides lookup and mutation of discount rules.
type Repository interface {
	// FindByCode returns the rule for a code, or an error wrapping
	// ErrInvalidCode when the code is unknown or inactive.
	FindByCode(ctx context.Context, code string) (*Rule, error)
	IncrementUses(ctx context.Context, code string) error
}

// Resolver validates a discount code against an order's subtotal and item
// count and returns the computed discount.
type Resolver interface {
	Resolve(ctx context.Context, code string, subtotal decimal.Decimal, itemCount int) (*Discount, error)
}
