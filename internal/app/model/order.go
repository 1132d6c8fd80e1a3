package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentOnline         PaymentMethod = "ONLINE_PAYMENT"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type OrderItemRequest struct {
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
}

// OrderRequest is the order-creation payload.
type OrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	PaymentMethod PaymentMethod      `json:"paymentMethod"`
}

// OrderRequestFromItems maps cart lines to variant references.
func OrderRequestFromItems(items []LineItem, method PaymentMethod) OrderRequest {
	req := OrderRequest{
		Items:         make([]OrderItemRequest, 0, len(items)),
		PaymentMethod: method,
	}
	for _, item := range items {
		req.Items = append(req.Items, OrderItemRequest{
			VariantID: item.Product.VariantID,
			Quantity:  item.Quantity,
		})
	}
	return req
}

// OrderConfirmation is what checkout keeps from a successful order call.
type OrderConfirmation struct {
	OrderID     string `json:"orderId"`
	Synthesized bool   `json:"synthesized"`
	Message     string `json:"message,omitempty"`
}

type OrderLine struct {
	ProductID   int64           `json:"productId,omitempty"`
	VariantID   int64           `json:"variantId,omitempty"`
	ProductName string          `json:"productName,omitempty"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Order is an order history record.
type Order struct {
	ID              string          `json:"id"`
	Items           []OrderLine     `json:"items"`
	Total           decimal.Decimal `json:"total"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod,omitempty"`
	ShippingAddress *Address        `json:"shippingAddress,omitempty"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}
