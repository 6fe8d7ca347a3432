// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("account_type", validateAccountType)
		_ = v.RegisterValidation("transaction_source", validateTransactionSource)
	}
}

func validateAccountType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "depository", "investment", "credit", "loan":
		return true
	}
	return false
}

func validateTransactionSource(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "plaid", "csv", "manual":
		return true
	}
	return false
}
