package service

import (
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Limits mirror the column sizes in internal/app/model
const (
	maxCustomerCodeLength    = 50
	maxCustomerNameLength    = 100
	maxCustomerEmailLength   = 255
	maxCustomerPhoneLength   = 50
	maxCustomerAddressLength = 500
	maxProductNameLength     = 150
)

func isValidEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

// trimOptional returns nil for absent or blank values
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// roundPrice matches the two decimal places the store keeps
func roundPrice(price float64) float64 {
	return math.Round(price*100) / 100
}
