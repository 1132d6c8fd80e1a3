package service

import (
	"context"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/pkg/logger"
)

// AddressAPI is the address book of the signed-in user. The caller's
// token travels in ctx.
type AddressAPI interface {
	ListAddresses(ctx context.Context) ([]model.Address, error)
	CreateAddress(ctx context.Context, input model.AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, id int64, input model.AddressInput) (*model.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
	SetDefaultAddress(ctx context.Context, id int64) error
}

type AddressService interface {
	GetAddresses(ctx context.Context) ([]model.Address, error)
	GetAddress(ctx context.Context, id int64) (*model.Address, error)
	CreateAddress(ctx context.Context, input model.AddressInput) (*model.Address, error)
	UpdateAddress(ctx context.Context, id int64, input model.AddressInput) (*model.Address, error)
	DeleteAddress(ctx context.Context, id int64) error
	SetDefaultAddress(ctx context.Context, id int64) error
}

type addressService struct {
	api AddressAPI
}

func NewAddressService(api AddressAPI) AddressService {
	return &addressService{
		api: api,
	}
}

func (s *addressService) GetAddresses(ctx context.Context) ([]model.Address, error) {
	addresses, err := s.api.ListAddresses(ctx)
	if err != nil {
		logger.Error("Failed to fetch addresses", err)
		return nil, translate(err, nil)
	}

	logger.Debug("Addresses fetched", map[string]interface{}{
		"count": len(addresses),
	})
	return addresses, nil
}

func (s *addressService) GetAddress(ctx context.Context, id int64) (*model.Address, error) {
	addresses, err := s.GetAddresses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range addresses {
		if addresses[i].ID == id {
			return &addresses[i], nil
		}
	}
	return nil, ErrAddressNotFound
}

func (s *addressService) CreateAddress(ctx context.Context, input model.AddressInput) (*model.Address, error) {
	address, err := s.api.CreateAddress(ctx, input)
	if err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"city":    input.City,
			"country": input.Country,
		})
		return nil, translate(err, nil)
	}

	logger.Info("Address created", map[string]interface{}{
		"address_id": address.ID,
		"is_default": address.IsDefault,
	})
	return address, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, id int64, input model.AddressInput) (*model.Address, error) {
	address, err := s.api.UpdateAddress(ctx, id, input)
	if err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"address_id": id,
		})
		return nil, translate(err, ErrAddressNotFound)
	}

	logger.Info("Address updated", map[string]interface{}{
		"address_id": id,
	})
	return address, nil
}

func (s *addressService) DeleteAddress(ctx context.Context, id int64) error {
	if err := s.api.DeleteAddress(ctx, id); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": id,
		})
		return translate(err, ErrAddressNotFound)
	}

	logger.Info("Address deleted", map[string]interface{}{
		"address_id": id,
	})
	return nil
}

// SetDefaultAddress refuses addresses that are unknown or already default.
func (s *addressService) SetDefaultAddress(ctx context.Context, id int64) error {
	address, err := s.GetAddress(ctx, id)
	if err != nil {
		return err
	}
	if address.IsDefault {
		return ErrAlreadyDefault
	}

	if err := s.api.SetDefaultAddress(ctx, id); err != nil {
		logger.Error("Failed to set default address", err, map[string]interface{}{
			"address_id": id,
		})
		return translate(err, ErrAddressNotFound)
	}

	logger.Info("Default address changed", map[string]interface{}{
		"address_id": id,
	})
	return nil
}
