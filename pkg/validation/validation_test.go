package validation

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAndNormalizeCountryCode(t *testing.T) {
	code, err := ValidateAndNormalizeCountryCode(" ru ")
	require.NoError(t, err)
	assert.Equal(t, "RU", code)

	for _, bad := range []string{"", "R", "RUS", "R1"} {
		_, err := ValidateAndNormalizeCountryCode(bad)
		assert.Error(t, err, bad)
	}
}

func TestValidateCurrency(t *testing.T) {
	assert.NoError(t, ValidateCurrency("RUB"))
	assert.Error(t, ValidateCurrency("rub"))
	assert.Error(t, ValidateCurrency("RU"))
}

type sample struct {
	Amount   decimal.Decimal `validate:"gt=0"`
	Country  string          `validate:"omitempty,country"`
	Currency string          `validate:"currency"`
	EndDate  time.Time       `validate:"future"`
}

func TestRegisteredTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	ok := sample{
		Amount:   decimal.RequireFromString("10.50"),
		Country:  "KZ",
		Currency: "RUB",
		EndDate:  time.Now().Add(time.Hour),
	}
	require.NoError(t, v.Struct(ok))

	bad := sample{
		Amount:   decimal.Zero,
		Country:  "kz",
		Currency: "rub",
		EndDate:  time.Now().Add(-time.Hour),
	}
	fields := FieldErrors(v.Struct(bad))
	assert.Equal(t, map[string]string{
		"Amount":   "gt",
		"Country":  "country",
		"Currency": "currency",
		"EndDate":  "future",
	}, fields)
}

func TestDecimalGreaterThanZero(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	type donation struct {
		Amount decimal.Decimal `validate:"decimal_gt0"`
	}
	assert.NoError(t, v.Struct(donation{Amount: decimal.RequireFromString("0.01")}))
	assert.Equal(t, map[string]string{"Amount": "decimal_gt0"}, FieldErrors(v.Struct(donation{Amount: decimal.Zero})))
	assert.Equal(t, map[string]string{"Amount": "decimal_gt0"}, FieldErrors(v.Struct(donation{Amount: decimal.NewFromInt(-5)})))
}
