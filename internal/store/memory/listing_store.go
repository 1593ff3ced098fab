package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sellside/marketd/internal/domain"
)

// ListingStore is an in-memory domain.ListingStore.
type ListingStore struct {
	mu       sync.RWMutex
	listings map[string]domain.Listing
}

var _ domain.ListingStore = (*ListingStore)(nil)

// NewListingStore creates an empty in-memory listing store.
func NewListingStore() *ListingStore {
	return &ListingStore{listings: make(map[string]domain.Listing)}
}

func (s *ListingStore) Create(_ context.Context, l domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[l.ID] = l
	return nil
}

func (s *ListingStore) GetByID(_ context.Context, id string) (domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

func (s *ListingStore) ListActive(_ context.Context, opts domain.ListOpts) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Listing
	for _, l := range s.listings {
		if l.Purchasable() {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, opts), nil
}

func (s *ListingStore) UpdateStatus(_ context.Context, id string, status domain.ListingStatus) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok || l.IsDeleted {
		return domain.Listing{}, domain.ErrNotFound
	}

	l.Status = status
	l.UpdatedAt = time.Now().UTC()
	s.listings[id] = l
	return l, nil
}

func (s *ListingStore) SetBlocked(_ context.Context, id string, blocked bool) (domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}

	l.IsBlocked = blocked
	l.UpdatedAt = time.Now().UTC()
	s.listings[id] = l
	return l, nil
}

func (s *ListingStore) SoftDelete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.listings[id]
	if !ok || l.IsDeleted {
		return domain.ErrNotFound
	}

	l.IsDeleted = true
	l.UpdatedAt = time.Now().UTC()
	s.listings[id] = l
	return nil
}
