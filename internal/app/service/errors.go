package service

import (
	"errors"
	"fmt"

	"github.com/ikkim/manajir-storefront/pkg/storefrontapi"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrNotInWishlist    = errors.New("product not in wishlist")
	ErrAddressNotFound  = errors.New("address not found")
	ErrAlreadyDefault   = errors.New("address is already the default")
	ErrOrderNotFound    = errors.New("order not found")
	ErrUnauthorized     = errors.New("sign in required")
	ErrUpstreamDown     = errors.New("storefront api unavailable")
	ErrUpstreamRejected = errors.New("storefront api rejected the request")
)

// translate maps API client errors onto service errors. notFound is used
// for 404 responses; the original error stays in the chain.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storefrontapi.ErrNotFound) && notFound != nil:
		return fmt.Errorf("%w: %w", notFound, err)
	case errors.Is(err, storefrontapi.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	case storefrontapi.IsTransient(err):
		return fmt.Errorf("%w: %w", ErrUpstreamDown, err)
	case errors.Is(err, storefrontapi.ErrDomainFailure):
		return fmt.Errorf("%w: %w", ErrUpstreamRejected, err)
	default:
		return err
	}
}
