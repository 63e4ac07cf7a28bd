// Package tariffs holds the subscription price, charity share and bonus
// month tables. The tables are fixed at build time; lookups are pure.
package tariffs

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// BillingMonth is the length of one billing month.
const BillingMonth = 30 * 24 * time.Hour

var prices = map[models.SubscriptionPlan]map[models.SubscriptionPeriod]int64{
	models.PlanBasic: {
		models.PeriodOneMonth:    500,
		models.PeriodThreeMonths: 1350,
		models.PeriodSixMonths:   2400,
		models.PeriodYear:        4200,
	},
	models.PlanPro: {
		models.PeriodOneMonth:    1000,
		models.PeriodThreeMonths: 2700,
		models.PeriodSixMonths:   4800,
		models.PeriodYear:        8400,
	},
	models.PlanPremium: {
		models.PeriodOneMonth:    2500,
		models.PeriodThreeMonths: 6750,
		models.PeriodSixMonths:   12000,
		models.PeriodYear:        21000,
	},
}

var charityPercents = map[models.SubscriptionPlan]int{
	models.PlanBasic:   0,
	models.PlanPro:     5,
	models.PlanPremium: 10,
}

// effectiveMonths includes the bonus months of the longer periods.
var effectiveMonths = map[models.SubscriptionPeriod]int{
	models.PeriodOneMonth:    1,
	models.PeriodThreeMonths: 3,
	models.PeriodSixMonths:   8,
	models.PeriodYear:        16,
}

// Tariff is the resolved price of a plan and period.
type Tariff struct {
	Plan           models.SubscriptionPlan
	Period         models.SubscriptionPeriod
	Amount         decimal.Decimal
	Currency       string
	CharityPercent int
	Months         int
}

// Price returns the price of one period of the plan.
func Price(plan models.SubscriptionPlan, period models.SubscriptionPeriod) (decimal.Decimal, error) {
	byPeriod, ok := prices[plan]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown plan %q", models.ErrValidation, plan)
	}
	price, ok := byPeriod[period]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown period %q", models.ErrValidation, period)
	}
	return decimal.NewFromInt(price), nil
}

// CharityPercent returns the share of the plan passed on to charity.
func CharityPercent(plan models.SubscriptionPlan) (int, error) {
	percent, ok := charityPercents[plan]
	if !ok {
		return 0, fmt.Errorf("%w: unknown plan %q", models.ErrValidation, plan)
	}
	return percent, nil
}

// EffectiveMonths returns the months a period covers, bonus months included.
func EffectiveMonths(period models.SubscriptionPeriod) (int, error) {
	months, ok := effectiveMonths[period]
	if !ok {
		return 0, fmt.Errorf("%w: unknown period %q", models.ErrValidation, period)
	}
	return months, nil
}

// Lookup resolves the full tariff of a plan and period.
func Lookup(plan models.SubscriptionPlan, period models.SubscriptionPeriod) (Tariff, error) {
	price, err := Price(plan, period)
	if err != nil {
		return Tariff{}, err
	}
	percent, err := CharityPercent(plan)
	if err != nil {
		return Tariff{}, err
	}
	months, err := EffectiveMonths(period)
	if err != nil {
		return Tariff{}, err
	}
	return Tariff{
		Plan:           plan,
		Period:         period,
		Amount:         price,
		Currency:       models.DefaultCurrency,
		CharityPercent: percent,
		Months:         months,
	}, nil
}

// ExpiresAt returns the end of the tariff's coverage starting at start.
func (t Tariff) ExpiresAt(start time.Time) time.Time {
	return start.Add(time.Duration(t.Months) * BillingMonth)
}

// NextChargeAt returns when the next recurring charge is due.
func (t Tariff) NextChargeAt(start time.Time) time.Time {
	return start.Add(BillingMonth)
}
