package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks the purchase order lifecycle.
type OrderStatus string

const (
	OrderStatusRequested OrderStatus = "REQUESTED"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Terminal reports whether the status has no outbound transitions.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusRejected, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusRequested, OrderStatusAccepted, OrderStatusRejected,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a purchase request from a buyer against a listing.
//
// SellerID is copied from the listing at creation time so seller-side
// queries never need a join. OfferPrice is the price snapshot: for FIXED
// listings it is set at creation and never changes; for QUOTE listings it
// starts nil and is set exactly once by the seller's quote.
type Order struct {
	ID         string           `json:"id"`
	ListingID  string           `json:"listing_id"`
	BuyerID    string           `json:"buyer_id"`
	SellerID   string           `json:"seller_id"`
	OfferPrice *decimal.Decimal `json:"offer_price"`
	Message    string           `json:"message,omitempty"`
	Status     OrderStatus      `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Quoted reports whether a price has been attached to the order.
func (o Order) Quoted() bool {
	return o.OfferPrice != nil
}
