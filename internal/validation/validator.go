package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// mobile-money method codes that require a payer phone number
var phoneMethods = map[string]bool{
	"MOBILE-MONEY": true,
	"ORANGE-MONEY": true,
}

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for InitiatePaymentRequest:
	// mobile-money charges are pushed to the payer's handset, so the
	// phone number is mandatory for those methods only.
	v.RegisterStructValidation(initiatePaymentStructValidation, InitiatePaymentRequest{})

	return v
}

func initiatePaymentStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(InitiatePaymentRequest)

	if phoneMethods[req.Method] && req.PayerPhone == "" {
		sl.ReportError(req.PayerPhone, "payerPhone", "PayerPhone", "required_for_mobile_money", "")
	}
}
