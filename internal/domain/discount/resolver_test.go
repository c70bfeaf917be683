package discount

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	rules       map[string]*Rule
	incremented []string
	incErr      error
}

func (m *mockRepo) FindByCode(_ context.Context, code string) (*Rule, error) {
	rule, ok := m.rules[code]
	if !ok {
		return nil, ErrInvalidCode
	}
	return rule, nil
}

func (m *mockRepo) IncrementUses(_ context.Context, code string) error {
	if m.incErr != nil {
		return m.incErr
	}
	m.incremented = append(m.incremented, code)
	return nil
}

func newResolver(rules ...*Rule) (*RepoResolver, *mockRepo) {
	repo := &mockRepo{rules: make(map[string]*Rule, len(rules))}
	for _, rule := range rules {
		repo.rules[rule.Code] = rule
	}
	r := NewRepoResolver(repo)
	r.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	}
	return r, repo
}

func subtotal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestResolve_Percentage(t *testing.T) {
	r, repo := newResolver(&Rule{
		Code:        "WELCOME10",
		Type:        TypePercentage,
		Value:       decimal.NewFromInt(10),
		Description: "10% off",
	})

	d, err := r.Resolve(context.Background(), "WELCOME10", subtotal("45.50"), 2)
	require.NoError(t, err)

	assert.Equal(t, "4.55", d.Amount.StringFixed(2))
	assert.Equal(t, "10", d.Percentage.String())
	assert.Equal(t, "10% off", d.Description)
	assert.Equal(t, []string{"WELCOME10"}, repo.incremented)
}

func TestResolve_FixedCappedAtSubtotal(t *testing.T) {
	r, _ := newResolver(&Rule{
		Code:  "FIVEOFF",
		Type:  TypeFixed,
		Value: decimal.NewFromInt(5),
	})

	d, err := r.Resolve(context.Background(), "FIVEOFF", subtotal("3.25"), 1)
	require.NoError(t, err)
	assert.Equal(t, "3.25", d.Amount.StringFixed(2))

	d, err = r.Resolve(context.Background(), "FIVEOFF", subtotal("20.00"), 1)
	require.NoError(t, err)
	assert.Equal(t, "5.00", d.Amount.StringFixed(2))
}

func TestResolve_UnknownCode(t *testing.T) {
	r, repo := newResolver()

	_, err := r.Resolve(context.Background(), "NOPE", subtotal("10.00"), 1)

	require.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, repo.incremented)
}

func TestResolve_MinItemsNotMet(t *testing.T) {
	r, repo := newResolver(&Rule{
		Code:     "DOZEN",
		Type:     TypePercentage,
		Value:    decimal.NewFromInt(15),
		MinItems: 12,
	})

	_, err := r.Resolve(context.Background(), "DOZEN", subtotal("30.00"), 6)

	require.ErrorIs(t, err, ErrInvalidCode)
	assert.Empty(t, repo.incremented, "rejected codes must not consume a use")
}

func TestResolve_ValidityWindow(t *testing.T) {
	future := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	past := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("not yet valid", func(t *testing.T) {
		r, _ := newResolver(&Rule{
			Code:      "EASTER",
			Type:      TypePercentage,
			Value:     decimal.NewFromInt(20),
			ValidFrom: &future,
		})
		_, err := r.Resolve(context.Background(), "EASTER", subtotal("10.00"), 1)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("expired", func(t *testing.T) {
		r, _ := newResolver(&Rule{
			Code:       "WINTER",
			Type:       TypePercentage,
			Value:      decimal.NewFromInt(20),
			ValidUntil: &past,
		})
		_, err := r.Resolve(context.Background(), "WINTER", subtotal("10.00"), 1)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("inside window", func(t *testing.T) {
		r, _ := newResolver(&Rule{
			Code:       "MARCH",
			Type:       TypePercentage,
			Value:      decimal.NewFromInt(20),
			ValidFrom:  &past,
			ValidUntil: &future,
		})
		_, err := r.Resolve(context.Background(), "MARCH", subtotal("10.00"), 1)
		require.NoError(t, err)
	})
}

func TestResolve_UsageLimit(t *testing.T) {
	r, _ := newResolver(&Rule{
		Code:    "LIMITED",
		Type:    TypeFixed,
		Value:   decimal.NewFromInt(5),
		MaxUses: 100,
		Uses:    100,
	})

	_, err := r.Resolve(context.Background(), "LIMITED", subtotal("10.00"), 1)
	require.ErrorIs(t, err, ErrUsageLimitReached)
}

func TestResolve_UnlimitedUses(t *testing.T) {
	r, _ := newResolver(&Rule{
		Code:  "EVERGREEN",
		Type:  TypeFixed,
		Value: decimal.NewFromInt(2),
		Uses:  1_000_000,
	})

	_, err := r.Resolve(context.Background(), "EVERGREEN", subtotal("10.00"), 1)
	require.NoError(t, err)
}

func TestApply_UnsupportedType(t *testing.T) {
	_, err := Apply(&Rule{Code: "X", Type: Type("bogo")}, subtotal("10.00"), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported discount type")
}
