package models

import "time"

// OrderStatus is the order lifecycle. Beyond checkout creating orders as
// pending, the core does not constrain how statuses progress.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is an immutable order line with the unit price frozen at
// checkout time.
type OrderItem struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	Subtotal  float64 `bson:"subtotal" json:"subtotal"`
}

// Order is a committed, stock-debited purchase created exactly once at
// checkout. Tax is 19% of the subtotal; shipping is a flat 10 waived when
// the subtotal exceeds 100.
type Order struct {
	ID             string      `bson:"_id" json:"id"`
	UserID         string      `bson:"user_id" json:"user_id"`
	Items          []OrderItem `bson:"items" json:"items"`
	Subtotal       float64     `bson:"subtotal" json:"subtotal"`
	Tax            float64     `bson:"tax" json:"tax"`
	Shipping       float64     `bson:"shipping" json:"shipping"`
	Total          float64     `bson:"total" json:"total"`
	Status         OrderStatus `bson:"status" json:"status"`
	TrackingNumber string      `bson:"tracking_number,omitempty" json:"tracking_number,omitempty"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
}

// OrderFilter narrows and paginates order listings.
type OrderFilter struct {
	UserID string
	Status OrderStatus
	Page   int
	Limit  int
}

// PageInfo describes the position of a page inside a listing.
type PageInfo struct {
	CurrentPage     int   `json:"current_page"`
	TotalPages      int   `json:"total_pages"`
	TotalItems      int64 `json:"total_items"`
	ItemsPerPage    int   `json:"items_per_page"`
	HasNextPage     bool  `json:"has_next_page"`
	HasPreviousPage bool  `json:"has_previous_page"`
}

// PaginatedOrders is a single page of orders plus paging metadata.
type PaginatedOrders struct {
	Items    []Order  `json:"items"`
	PageInfo PageInfo `json:"page_info"`
}
