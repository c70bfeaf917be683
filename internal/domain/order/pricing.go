package order

import "github.com/shopspring/decimal"

// Config holds the business parameters injected into the order service.
// It is treated as immutable after construction.
type Config struct {
	TaxRate            decimal.Decimal
	DeliveryFee        decimal.Decimal
	MaxItemsPerOrder   int
	MaxOrderValue      decimal.Decimal
	DefaultPrepMinutes int
	Currency           string
}

// Quote is the result of pricing an order. All amounts carry two fractional
// digits, rounded half-up.
type Quote struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	DeliveryFee    decimal.Decimal
	Total          decimal.Decimal
}

// Price computes the full quote for a set of items. It is pure and
// idempotent: the same inputs always produce the same quote.
//
// Each derived quantity is rounded to 2 places before the next is computed
// so repeated recalculation cannot accumulate drift:
//
//	subtotal = Σ(effective unit price × qty)
//	tax      = (subtotal − discount) × taxRate
//	total    = (subtotal − discount) + tax + deliveryFee
func Price(items []Item, discount decimal.Decimal, deliveryType DeliveryType, cfg Config) Quote {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal())
	}
	subtotal = subtotal.Round(2)

	discount = decimal.Min(discount, subtotal).Round(2)
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	discounted := subtotal.Sub(discount)

	tax := discounted.Mul(cfg.TaxRate).Round(2)

	fee := decimal.Zero
	if deliveryType == DeliveryDelivery {
		fee = cfg.DeliveryFee.Round(2)
	}

	total := discounted.Add(tax).Add(fee).Round(2)

	return Quote{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		DeliveryFee:    fee,
		Total:          total,
	}
}

// PrepTime returns the estimated preparation minutes for the items: the
// longest line (prep time × quantity) wins, since lines are prepared in
// parallel. Orders with no prep information fall back to the configured
// default.
func PrepTime(items []Item, cfg Config) int {
	longest := 0
	for _, it := range items {
		if t := it.TotalPrepTime(); t > longest {
			longest = t
		}
	}
	if longest == 0 {
		return cfg.DefaultPrepMinutes
	}
	return longest
}
