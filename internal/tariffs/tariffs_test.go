package tariffs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadaqapass/sadaqa/internal/models"
)

func TestLookupProSixMonths(t *testing.T) {
	tariff, err := Lookup(models.PlanPro, models.PeriodSixMonths)
	require.NoError(t, err)

	assert.Equal(t, int64(4800), tariff.Amount.IntPart())
	assert.Equal(t, 5, tariff.CharityPercent)
	assert.Equal(t, 8, tariff.Months)
	assert.Equal(t, "RUB", tariff.Currency)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(8*30*24*time.Hour), tariff.ExpiresAt(start))
	assert.Equal(t, start.Add(30*24*time.Hour), tariff.NextChargeAt(start))
}

func TestPriceTable(t *testing.T) {
	tests := []struct {
		plan   models.SubscriptionPlan
		period models.SubscriptionPeriod
		want   int64
	}{
		{models.PlanBasic, models.PeriodOneMonth, 500},
		{models.PlanBasic, models.PeriodYear, 4200},
		{models.PlanPro, models.PeriodThreeMonths, 2700},
		{models.PlanPremium, models.PeriodSixMonths, 12000},
		{models.PlanPremium, models.PeriodYear, 21000},
	}
	for _, tt := range tests {
		t.Run(string(tt.plan)+"/"+string(tt.period), func(t *testing.T) {
			price, err := Price(tt.plan, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, price.IntPart())
		})
	}
}

func TestUnknownPlanOrPeriod(t *testing.T) {
	_, err := Price("gold", models.PeriodOneMonth)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = EffectiveMonths("P2M")
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = Lookup(models.PlanBasic, "P24M")
	assert.Error(t, err)
}

func TestCharityPercents(t *testing.T) {
	for plan, want := range map[models.SubscriptionPlan]int{
		models.PlanBasic:   0,
		models.PlanPro:     5,
		models.PlanPremium: 10,
	} {
		got, err := CharityPercent(plan)
		require.NoError(t, err)
		assert.Equal(t, want, got, plan)
	}
}
