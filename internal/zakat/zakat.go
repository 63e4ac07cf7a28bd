// Package zakat computes the nisab threshold and the zakat due on a
// declared set of assets and liabilities. Everything here is pure.
package zakat

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// NisabGoldGrams is the gold weight the nisab is pegged to.
	NisabGoldGrams = decimal.NewFromInt(85)
	// NisabSilverGrams is the silver weight the nisab is pegged to.
	NisabSilverGrams = decimal.RequireFromString("612.36")
	// FallbackNisab is used when no metal rate is supplied.
	FallbackNisab = decimal.NewFromInt(450000)
	// Rate is the share of qualifying wealth that is due.
	Rate = decimal.RequireFromString("0.025")
)

// Metal is a declared holding of gold or silver. Rate is the price per gram.
type Metal struct {
	Weight decimal.Decimal `json:"weight" binding:"gte=0"`
	Rate   decimal.Decimal `json:"rate" binding:"gte=0"`
}

// Value returns weight × rate, or zero for a nil holding.
func (m *Metal) Value() decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return m.Weight.Mul(m.Rate)
}

// rate returns the price per gram when it is usable for the nisab.
func (m *Metal) rate() *decimal.Decimal {
	if m == nil || !m.Rate.IsPositive() {
		return nil
	}
	r := m.Rate
	return &r
}

// Payload is the declared asset/liability breakdown. Absent fields are zero.
type Payload struct {
	Cash        decimal.Decimal `json:"cash" binding:"gte=0"`
	BankCash    decimal.Decimal `json:"bank_cash" binding:"gte=0"`
	Gold        *Metal          `json:"gold,omitempty" binding:"omitempty"`
	Silver      *Metal          `json:"silver,omitempty" binding:"omitempty"`
	Goods       decimal.Decimal `json:"goods" binding:"gte=0"`
	Investments decimal.Decimal `json:"investments" binding:"gte=0"`
	OtherIncome decimal.Decimal `json:"other_income" binding:"gte=0"`
	Debts       decimal.Decimal `json:"debts" binding:"gte=0"`
	Expenses    decimal.Decimal `json:"expenses" binding:"gte=0"`
}

// Validate rejects negative amounts.
func (p Payload) Validate() error {
	amounts := map[string]decimal.Decimal{
		"cash":         p.Cash,
		"bank_cash":    p.BankCash,
		"goods":        p.Goods,
		"investments":  p.Investments,
		"other_income": p.OtherIncome,
		"debts":        p.Debts,
		"expenses":     p.Expenses,
	}
	if p.Gold != nil {
		amounts["gold.weight"], amounts["gold.rate"] = p.Gold.Weight, p.Gold.Rate
	}
	if p.Silver != nil {
		amounts["silver.weight"], amounts["silver.rate"] = p.Silver.Weight, p.Silver.Rate
	}
	for name, v := range amounts {
		if v.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

// Result is the outcome of a calculation.
type Result struct {
	TotalWealth decimal.Decimal `json:"total_wealth"`
	Nisab       decimal.Decimal `json:"nisab_value"`
	ZakatDue    decimal.Decimal `json:"zakat_due"`
	IsPayable   bool            `json:"is_payable"`
}

// Nisab returns the larger of the gold and silver thresholds among the rates
// supplied, or FallbackNisab when neither is.
func Nisab(goldRate, silverRate *decimal.Decimal) decimal.Decimal {
	var candidates []decimal.Decimal
	if goldRate != nil && goldRate.IsPositive() {
		candidates = append(candidates, NisabGoldGrams.Mul(*goldRate))
	}
	if silverRate != nil && silverRate.IsPositive() {
		candidates = append(candidates, NisabSilverGrams.Mul(*silverRate))
	}
	if len(candidates) == 0 {
		return FallbackNisab
	}
	return decimal.Max(candidates[0], candidates[1:]...)
}

// QualifyingWealth sums the assets, subtracts debts and expenses and floors
// the result at zero.
func QualifyingWealth(p Payload) decimal.Decimal {
	assets := decimal.Sum(
		p.Cash,
		p.BankCash,
		p.Gold.Value(),
		p.Silver.Value(),
		p.Goods,
		p.Investments,
		p.OtherIncome,
	)
	wealth := assets.Sub(p.Debts).Sub(p.Expenses)
	if wealth.IsNegative() {
		return decimal.Zero
	}
	return wealth
}

// Due is 2.5% of wealth when wealth reaches the nisab, zero otherwise.
func Due(wealth, nisab decimal.Decimal) decimal.Decimal {
	if wealth.LessThan(nisab) || !wealth.IsPositive() {
		return decimal.Zero
	}
	return wealth.Mul(Rate).Round(2)
}

// Calculate runs the whole computation for a payload.
func Calculate(p Payload) Result {
	nisab := Nisab(p.Gold.rate(), p.Silver.rate())
	wealth := QualifyingWealth(p)
	due := Due(wealth, nisab)
	return Result{
		TotalWealth: wealth,
		Nisab:       nisab,
		ZakatDue:    due,
		IsPayable:   due.IsPositive(),
	}
}
