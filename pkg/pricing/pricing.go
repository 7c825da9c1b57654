package pricing

import "sort"

// Tier is a bulk discount bracket. A purchase quantity greater than or equal
// to Threshold qualifies for DiscountPct percent off the base rate.
type Tier struct {
	Name        string
	Threshold   int64
	DiscountPct int64
}

// Quote is the result of pricing a requested quantity.
type Quote struct {
	Tier        Tier
	UnitPrice   int64 // minor currency units per credit
	DiscountPct int64
	TotalAmount int64 // UnitPrice * Quantity, exact
	Quantity    int64
}

// Engine maps a requested purchase quantity to a price per unit. It is a pure
// value object: no I/O, no clock, safe for concurrent use.
type Engine struct {
	baseRate int64 // minor currency units per credit at 0% discount
	tiers    []Tier
}

// DefaultTiers returns the standard bulk brackets: 500+ credits at 25% off,
// 2500+ credits at 30% off.
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "standard", Threshold: 0, DiscountPct: 0},
		{Name: "bulk", Threshold: 500, DiscountPct: 25},
		{Name: "enterprise", Threshold: 2500, DiscountPct: 30},
	}
}

// NewEngine builds an engine from a base rate in minor currency units and a
// tier list. Tiers are evaluated inclusive: quantity >= threshold, highest
// matching threshold wins.
func NewEngine(baseRate int64, tiers []Tier) *Engine {
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold > sorted[j].Threshold
	})
	return &Engine{baseRate: baseRate, tiers: sorted}
}

// BaseRate returns the undiscounted price per credit.
func (e *Engine) BaseRate() int64 {
	return e.baseRate
}

// PricePerUnit resolves the tier for the requested quantity and computes the
// discounted unit price in integer minor units, rounding down.
func (e *Engine) PricePerUnit(quantity int64) (Tier, int64, int64) {
	for _, tier := range e.tiers {
		if quantity >= tier.Threshold {
			unitPrice := e.baseRate * (100 - tier.DiscountPct) / 100
			return tier, unitPrice, tier.DiscountPct
		}
	}
	return Tier{Name: "standard"}, e.baseRate, 0
}

// QuoteFor prices a full purchase. TotalAmount is exact integer arithmetic;
// the credit_amount x unit_price invariant on the ledger relies on it.
func (e *Engine) QuoteFor(quantity int64) Quote {
	tier, unitPrice, discount := e.PricePerUnit(quantity)
	return Quote{
		Tier:        tier,
		UnitPrice:   unitPrice,
		DiscountPct: discount,
		TotalAmount: unitPrice * quantity,
		Quantity:    quantity,
	}
}
