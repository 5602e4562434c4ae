package models

import "time"

// CartItem is a single staged line in a cart. UnitPrice is snapshotted from
// the product when the line is added or re-touched; a later catalog price
// change does not move it.
type CartItem struct {
	ID        string  `bson:"id" json:"id"`
	ProductID string  `bson:"product_id" json:"product_id"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	Subtotal  float64 `bson:"subtotal" json:"subtotal"`
}

// Cart is the per-identity staging area. At most one open cart exists per
// user; it is created lazily and cleared in place, never deleted.
// Invariants: Subtotal is the sum of item subtotals and
// Total = max(0, Subtotal - Discount).
type Cart struct {
	ID           string     `bson:"_id" json:"id"`
	UserID       string     `bson:"user_id" json:"user_id"`
	Items        []CartItem `bson:"items" json:"items"`
	Subtotal     float64    `bson:"subtotal" json:"subtotal"`
	Discount     float64    `bson:"discount" json:"discount"`
	Total        float64    `bson:"total" json:"total"`
	DiscountCode string     `bson:"discount_code,omitempty" json:"discount_code,omitempty"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at"`
}

// ItemByProduct returns the line holding the given product, if any.
func (c *Cart) ItemByProduct(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Item returns the line with the given item id, if any.
func (c *Cart) Item(itemID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}
