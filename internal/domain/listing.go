package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingType distinguishes fixed-price listings from quote-on-request ones.
type ListingType string

const (
	ListingTypeFixed ListingType = "FIXED"
	ListingTypeQuote ListingType = "QUOTE"
)

// ListingStatus is the seller-controlled publication state.
type ListingStatus string

const (
	ListingStatusDraft  ListingStatus = "DRAFT"
	ListingStatusActive ListingStatus = "ACTIVE"
	ListingStatusPaused ListingStatus = "PAUSED"
)

// Listing is a seller's offer. Price is required and positive for FIXED
// listings and absent for QUOTE listings, where the price is negotiated per
// order.
type Listing struct {
	ID          string           `json:"id"`
	SellerID    string           `json:"seller_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Type        ListingType      `json:"listing_type"`
	Price       *decimal.Decimal `json:"price"`
	Status      ListingStatus    `json:"status"`
	IsDeleted   bool             `json:"is_deleted"`
	IsBlocked   bool             `json:"is_blocked"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Purchasable reports whether the listing can receive new orders.
func (l Listing) Purchasable() bool {
	return !l.IsDeleted && !l.IsBlocked && l.Status == ListingStatusActive
}
