package service

import (
	"context"

	"github.com/ikkim/manajir-storefront/internal/app/model"
	"github.com/ikkim/manajir-storefront/pkg/logger"
)

type OrderAPI interface {
	CreateOrder(ctx context.Context, req model.OrderRequest) (model.OrderConfirmation, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

type OrderService interface {
	GetOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
}

type orderService struct {
	api OrderAPI
}

func NewOrderService(api OrderAPI) OrderService {
	return &orderService{
		api: api,
	}
}

func (s *orderService) GetOrders(ctx context.Context) ([]model.Order, error) {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		logger.Error("Failed to fetch orders", err)
		return nil, translate(err, nil)
	}

	logger.Debug("Orders fetched", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.api.GetOrder(ctx, id)
	if err != nil {
		logger.Warn("Failed to fetch order", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, translate(err, ErrOrderNotFound)
	}
	return order, nil
}
