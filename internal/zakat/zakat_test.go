package zakat

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func TestNisab(t *testing.T) {
	tests := []struct {
		name   string
		gold   *decimal.Decimal
		silver *decimal.Decimal
		want   string
	}{
		{"fallback", nil, nil, "450000"},
		{"gold only", dp("6000"), nil, "510000"},
		{"silver only", nil, dp("80"), "48988.8"},
		{"both takes max", dp("6000"), dp("80"), "510000"},
		{"zero rate ignored", dp("0"), dp("80"), "48988.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Nisab(tt.gold, tt.silver)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestQualifyingWealthNeverNegative(t *testing.T) {
	p := Payload{Cash: d("100"), Debts: d("500"), Expenses: d("50")}
	assert.True(t, QualifyingWealth(p).IsZero())
}

func TestQualifyingWealthSumsMetals(t *testing.T) {
	p := Payload{
		Cash:   d("1000"),
		Gold:   &Metal{Weight: d("10"), Rate: d("6000")},
		Silver: &Metal{Weight: d("100"), Rate: d("80")},
		Debts:  d("500"),
	}
	assert.True(t, QualifyingWealth(p).Equal(d("68500")))
}

func TestCalculateCashOnly(t *testing.T) {
	res := Calculate(Payload{Cash: d("500000")})
	assert.True(t, res.Nisab.Equal(FallbackNisab))
	assert.True(t, res.ZakatDue.Equal(d("12500")), "got %s", res.ZakatDue)
	assert.True(t, res.IsPayable)

	res = Calculate(Payload{Cash: d("1000")})
	assert.True(t, res.ZakatDue.IsZero())
	assert.False(t, res.IsPayable)
}

func TestCalculateUsesMetalRatesForNisab(t *testing.T) {
	// Silver nisab is 48988.8, so 50000 qualifies.
	res := Calculate(Payload{
		Cash:   d("50000"),
		Silver: &Metal{Weight: d("0"), Rate: d("80")},
	})
	assert.True(t, res.Nisab.Equal(d("48988.8")))
	assert.True(t, res.ZakatDue.Equal(d("1250")))
}

func TestPayloadDefaultsMissingFieldsToZero(t *testing.T) {
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(`{"cash": 600000, "gold": {"weight": "1"}}`), &p))
	assert.True(t, p.BankCash.IsZero())
	assert.True(t, p.Gold.Rate.IsZero())

	res := Calculate(p)
	assert.True(t, res.ZakatDue.Equal(d("15000")))
}

func TestPayloadValidate(t *testing.T) {
	assert.NoError(t, Payload{Cash: decimal.NewFromInt(10)}.Validate())
	assert.Error(t, Payload{Debts: decimal.NewFromInt(-1)}.Validate())
	assert.Error(t, Payload{Gold: &Metal{Weight: decimal.NewFromInt(1), Rate: decimal.NewFromInt(-5)}}.Validate())
}
