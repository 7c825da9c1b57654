package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricePerUnit(t *testing.T) {
	// Base rate 150.00 expressed in minor units.
	engine := NewEngine(15000, DefaultTiers())

	tests := []struct {
		name          string
		quantity      int64
		wantUnitPrice int64
		wantDiscount  int64
		wantTier      string
	}{
		{"below first threshold", 499, 15000, 0, "standard"},
		{"exactly first threshold", 500, 11250, 25, "bulk"},
		{"just below second threshold", 2499, 11250, 25, "bulk"},
		{"exactly second threshold", 2500, 10500, 30, "enterprise"},
		{"far above second threshold", 100000, 10500, 30, "enterprise"},
		{"single credit", 1, 15000, 0, "standard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, unitPrice, discount := engine.PricePerUnit(tt.quantity)
			assert.Equal(t, tt.wantUnitPrice, unitPrice)
			assert.Equal(t, tt.wantDiscount, discount)
			assert.Equal(t, tt.wantTier, tier.Name)
		})
	}
}

func TestQuoteForTotalIsExact(t *testing.T) {
	engine := NewEngine(15000, DefaultTiers())

	// 600 credits at 25% off: 11250 each, 6,750,000 minor units total.
	quote := engine.QuoteFor(600)
	assert.Equal(t, int64(11250), quote.UnitPrice)
	assert.Equal(t, int64(6_750_000), quote.TotalAmount)
	assert.Equal(t, quote.UnitPrice*quote.Quantity, quote.TotalAmount)
}

func TestPricePerUnitIsDeterministic(t *testing.T) {
	engine := NewEngine(15000, DefaultTiers())
	_, first, _ := engine.PricePerUnit(2500)
	for i := 0; i < 100; i++ {
		_, again, _ := engine.PricePerUnit(2500)
		assert.Equal(t, first, again)
	}
}

func TestUnorderedTierInput(t *testing.T) {
	// Engine must sort tiers itself; callers may pass them in any order.
	engine := NewEngine(10000, []Tier{
		{Name: "enterprise", Threshold: 2500, DiscountPct: 30},
		{Name: "standard", Threshold: 0, DiscountPct: 0},
		{Name: "bulk", Threshold: 500, DiscountPct: 25},
	})

	_, unitPrice, _ := engine.PricePerUnit(600)
	assert.Equal(t, int64(7500), unitPrice)
}
