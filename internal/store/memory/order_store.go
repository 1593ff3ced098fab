// Package memory provides in-memory store implementations with the same
// conditional-update semantics as the PostgreSQL stores. They serve as
// test doubles; nothing outside the tests wires them.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
)

// OrderStore is an in-memory domain.OrderStore.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates an empty in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]domain.Order)}
}

func (s *OrderStore) Create(_ context.Context, o domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.orders {
		if existing.BuyerID == o.BuyerID && existing.ListingID == o.ListingID && !existing.Status.Terminal() {
			return domain.ErrDuplicateOrder
		}
	}
	s.orders[o.ID] = o
	return nil
}

func (s *OrderStore) GetByID(_ context.Context, id string) (domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return o, nil
}

func (s *OrderStore) ListByBuyer(_ context.Context, buyerID string, opts domain.ListOpts) ([]domain.Order, error) {
	return s.list(func(o domain.Order) bool { return o.BuyerID == buyerID }, opts), nil
}

func (s *OrderStore) ListBySeller(_ context.Context, sellerID string, opts domain.ListOpts) ([]domain.Order, error) {
	return s.list(func(o domain.Order) bool { return o.SellerID == sellerID }, opts), nil
}

func (s *OrderStore) list(match func(domain.Order) bool, opts domain.ListOpts) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Order
	for _, o := range s.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, opts)
}

func (s *OrderStore) HasActive(_ context.Context, buyerID, listingID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.BuyerID == buyerID && o.ListingID == listingID && !o.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

func (s *OrderStore) UpdateStatus(_ context.Context, id string, from, to domain.OrderStatus) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	if o.Status != from {
		return domain.Order{}, domain.ErrInvalidState
	}

	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return o, nil
}

func (s *OrderStore) SetOfferPrice(_ context.Context, id string, price decimal.Decimal) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	if o.Quoted() {
		return domain.Order{}, domain.ErrAlreadyQuoted
	}
	if o.Status != domain.OrderStatusRequested {
		return domain.Order{}, domain.ErrInvalidState
	}

	p := price
	o.OfferPrice = &p
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return o, nil
}

func (s *OrderStore) ListTerminalBefore(_ context.Context, before time.Time) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Order
	for _, o := range s.orders {
		if o.Status.Terminal() && o.UpdatedAt.Before(before) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out, nil
}

func paginate[T any](items []T, opts domain.ListOpts) []T {
	if opts.Offset > 0 {
		if opts.Offset >= len(items) {
			return nil
		}
		items = items[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}
