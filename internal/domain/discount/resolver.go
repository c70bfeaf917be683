package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RepoResolver implements Resolver by looking up rules from a Repository
// and applying them.
type RepoResolver struct {
	repo Repository
	now  func() time.Time
}

var _ Resolver = (*RepoResolver)(nil)

// NewRepoResolver creates a RepoResolver backed by the given Repository.
func NewRepoResolver(repo Repository) *RepoResolver {
	return &RepoResolver{repo: repo, now: time.Now}
}

// Resolve looks up the rule for a code, checks temporal validity and usage
// limits, applies it to the subtotal, and increments the usage counter on
// success.
func (r *RepoResolver) Resolve(ctx context.Context, code string, subtotal decimal.Decimal, itemCount int) (*Discount, error) {
	rule, err := r.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, ErrInvalidCode
		}
		return nil, errors.Wrap(err, "lookup discount code")
	}

	now := r.now()
	if rule.ValidFrom != nil && now.Before(*rule.ValidFrom) {
		return nil, ErrExpired
	}
	if rule.ValidUntil != nil && now.After(*rule.ValidUntil) {
		return nil, ErrExpired
	}
	if rule.MaxUses > 0 && rule.Uses >= rule.MaxUses {
		return nil, ErrUsageLimitReached
	}

	d, err := Apply(rule, subtotal, itemCount)
	if err != nil {
		return nil, err
	}

	if err := r.repo.IncrementUses(ctx, code); err != nil {
		return nil, errors.Wrap(err, "increment discount uses")
	}

	return d, nil
}

// Apply calculates the discount a rule yields for the given subtotal and
// item count. It returns ErrInvalidCode when the order does not satisfy the
// rule's minimum item count.
func Apply(rule *Rule, subtotal decimal.Decimal, itemCount int) (*Discount, error) {
	if rule.MinItems > 0 && itemCount < rule.MinItems {
		return nil, ErrInvalidCode
	}

	switch rule.Type {
	case TypePercentage:
		amount := subtotal.Mul(rule.Value).Div(hundred).Round(2)
		return &Discount{
			Amount:      floorAtZero(amount),
			Percentage:  rule.Value,
			Description: rule.Description,
		}, nil
	case TypeFixed:
		amount := decimal.Min(rule.Value, subtotal).Round(2)
		return &Discount{
			Amount:      floorAtZero(amount),
			Description: rule.Description,
		}, nil
	default:
		return nil, errors.Errorf("unsupported discount type: %q", rule.Type)
	}
}

func floorAtZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
