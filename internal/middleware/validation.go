package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators adds the custom tags used by request DTOs to gin's validator.
// decimal_amount accepts any string parseable as a decimal; sign and scale checks stay in the
// services so that zero, negative and over-precise amounts surface as INVALID_AMOUNT in the
// same order as every other payment rejection.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("decimal_amount", validDecimal)
}

func validDecimal(fl validator.FieldLevel) bool {
	_, err := decimal.NewFromString(fl.Field().String())
	return err == nil
}
