package httpx

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var maxPrice = decimal.RequireFromString("9999.99")

// ValidMoney reports whether s is a positive amount with at most two
// decimals that fits NUMERIC(6,2).
func ValidMoney(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Round(2)) && d.LessThanOrEqual(maxPrice)
}

var registerOnce sync.Once

// RegisterValidators hooks the JSON tag name function and the money tag into
// gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
			return ValidMoney(fl.Field().String())
		})
	})
}
