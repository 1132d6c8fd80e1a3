package checkout

import (
	"fmt"

	"github.com/ikkim/manajir-storefront/internal/app/model"
)

type PaymentOption struct {
	Method  model.PaymentMethod `json:"method"`
	Label   string              `json:"label"`
	Enabled bool                `json:"enabled"`
}

// PaymentOptions lists what the payment step shows. Online payment is
// displayed but cannot be selected yet.
var PaymentOptions = []PaymentOption{
	{Method: model.PaymentCashOnDelivery, Label: "Cash on Delivery", Enabled: true},
	{Method: model.PaymentOnline, Label: "Online Payment", Enabled: false},
}

// DefaultPaymentMethod is the first enabled option.
func DefaultPaymentMethod() model.PaymentMethod {
	for _, opt := range PaymentOptions {
		if opt.Enabled {
			return opt.Method
		}
	}
	return model.PaymentCashOnDelivery
}

func checkPaymentMethod(method model.PaymentMethod) error {
	for _, opt := range PaymentOptions {
		if opt.Method != method {
			continue
		}
		if !opt.Enabled {
			return fmt.Errorf("%w: %s", ErrPaymentMethodUnavailable, method)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown method %q", ErrPaymentMethodUnavailable, method)
}

// SelectDefaultAddress picks the address marked default, else the first.
func SelectDefaultAddress(addresses []model.Address) (model.Address, bool) {
	for _, a := range addresses {
		if a.IsDefault {
			return a, true
		}
	}
	if len(addresses) > 0 {
		return addresses[0], true
	}
	return model.Address{}, false
}
