package checkout

import (
	"context"
	"errors"

	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
)

var (
	ErrCartEmpty                = errors.New("cart is empty")
	ErrInvalidTransition        = errors.New("invalid checkout transition")
	ErrSubmissionInFlight       = errors.New("order submission already in progress")
	ErrPaymentMethodUnavailable = errors.New("payment method unavailable")
	ErrInvalidShipping          = errors.New("shipping address incomplete")
)

const (
	msgOrderFailed    = "We couldn't place your order. Please try again."
	msgOrderTimeout   = "Placing your order took too long. Please try again."
	msgOrderCancelled = "Order submission was cancelled."
	msgOrderPlaced    = "Order placed successfully"
)

// failureMessage is the notice shown after a failed submission. Messages
// from the API are only shown for explicit rejections.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return msgOrderTimeout
	case errors.Is(err, context.Canceled):
		return msgOrderCancelled
	}

	var apiErr *storefrontapi.APIError
	if errors.Is(err, storefrontapi.ErrDomainFailure) && errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return msgOrderFailed
}
