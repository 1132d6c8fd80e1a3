package model

import "github.com/shopspring/decimal"

// LineKey identifies a line item: the same product in another size or
// color is a different line.
type LineKey struct {
	ProductID int64
	Size      string
	Color     string
}

type LineItem struct {
	Product  ProductSnapshot `json:"product"`
	Size     string          `json:"selectedSize"`
	Color    string          `json:"selectedColor"`
	Quantity int             `json:"quantity"`
}

func (li LineItem) Key() LineKey {
	return LineKey{ProductID: li.Product.ID, Size: li.Size, Color: li.Color}
}

// LineTotal is unit price times quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Product.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// CartSnapshot is the persisted part of the cart. The drawer open flag is
// deliberately absent.
type CartSnapshot struct {
	Items []LineItem `json:"items"`
}
