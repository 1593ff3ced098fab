package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// OrderStore persists purchase orders.
//
// UpdateStatus and SetOfferPrice are conditional updates: the mutation is
// applied only if the row still matches the expected current state, so two
// racing requests cannot both win. When the guard fails the store reports
// why (ErrNotFound, ErrInvalidState, ErrAlreadyQuoted) based on a fresh
// read of the row.
type OrderStore interface {
	Create(ctx context.Context, order Order) error
	GetByID(ctx context.Context, id string) (Order, error)
	ListByBuyer(ctx context.Context, buyerID string, opts ListOpts) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID string, opts ListOpts) ([]Order, error)
	// HasActive reports whether the buyer already has an order for the
	// listing in REQUESTED or ACCEPTED.
	HasActive(ctx context.Context, buyerID, listingID string) (bool, error)
	// UpdateStatus moves the order from exactly `from` to `to` and returns
	// the updated row.
	UpdateStatus(ctx context.Context, id string, from, to OrderStatus) (Order, error)
	// SetOfferPrice attaches a quote to an order that is still REQUESTED
	// and has no price yet, and returns the updated row.
	SetOfferPrice(ctx context.Context, id string, price decimal.Decimal) (Order, error)
	// ListTerminalBefore returns orders in a terminal status whose last
	// update is strictly before the cutoff. Used by the archiver.
	ListTerminalBefore(ctx context.Context, before time.Time) ([]Order, error)
}

// ListingStore persists listings. The order core only reads from it;
// mutations belong to the listing service.
type ListingStore interface {
	Create(ctx context.Context, listing Listing) error
	GetByID(ctx context.Context, id string) (Listing, error)
	ListActive(ctx context.Context, opts ListOpts) ([]Listing, error)
	UpdateStatus(ctx context.Context, id string, status ListingStatus) (Listing, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (Listing, error)
	SoftDelete(ctx context.Context, id string) error
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Event     string         `json:"event"`
	Detail    map[string]any `json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
