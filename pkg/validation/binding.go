package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Register installs the custom tags on v:
//
//	country      ISO-3166 alpha-2, upper case
//	currency     ISO-4217 alpha-3, upper case
//	future       a time.Time after now
//	decimal_gt0  a decimal.Decimal above zero
//
// and teaches v to compare decimal.Decimal fields with gt/gte/lt/lte.
func Register(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	if err := v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		return ValidateCountryCode(code) == nil && strings.ToUpper(code) == code
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return ValidateCurrency(fl.Field().String()) == nil
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("decimal_gt0", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			return fl.Field().Float() > 0
		}
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
		t, ok := fl.Field().Interface().(time.Time)
		return ok && t.After(time.Now())
	})
}

// RegisterGin installs the custom tags on gin's binding engine.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// FieldErrors maps every failed field to the tag that rejected it.
// It returns nil when err is not a validation error.
func FieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
