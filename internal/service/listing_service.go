package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
)

// ListingService owns listing mutations and serves cached reads. It also
// satisfies the ListingSource interface the order lifecycle consumes.
type ListingService struct {
	store  domain.ListingStore
	cache  domain.ListingCache
	audit  domain.AuditStore
	bus    domain.SignalBus
	logger *slog.Logger
}

var _ ListingSource = (*ListingService)(nil)

// NewListingService creates a ListingService. Cache, audit, and bus are
// optional.
func NewListingService(
	store domain.ListingStore,
	cache domain.ListingCache,
	audit domain.AuditStore,
	bus domain.SignalBus,
	logger *slog.Logger,
) *ListingService {
	return &ListingService{
		store:  store,
		cache:  cache,
		audit:  audit,
		bus:    bus,
		logger: logger.With(slog.String("component", "listing_service")),
	}
}

// CreateListingInput carries the seller-provided fields for a new listing.
type CreateListingInput struct {
	SellerID    string
	Title       string
	Description string
	Type        domain.ListingType
	Price       *decimal.Decimal
}

// Create stores a new listing in DRAFT. Fixed-price listings must carry a
// positive price; quote listings must not carry one.
func (s *ListingService) Create(ctx context.Context, in CreateListingInput) (domain.Listing, error) {
	title := SanitizeText(in.Title)
	if title == "" {
		return domain.Listing{}, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidInput)
	}

	switch in.Type {
	case domain.ListingTypeFixed:
		if in.Price == nil || !in.Price.IsPositive() {
			return domain.Listing{}, domain.ErrInvalidPrice
		}
	case domain.ListingTypeQuote:
		if in.Price != nil {
			return domain.Listing{}, domain.ErrInvalidPrice
		}
	default:
		return domain.Listing{}, fmt.Errorf("%w: unknown listing type %q", domain.ErrInvalidInput, in.Type)
	}

	now := time.Now().UTC()
	listing := domain.Listing{
		ID:          uuid.New().String(),
		SellerID:    in.SellerID,
		Title:       title,
		Description: SanitizeText(in.Description),
		Type:        in.Type,
		Price:       in.Price,
		Status:      domain.ListingStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, listing); err != nil {
		return domain.Listing{}, fmt.Errorf("listing_service: create: %w", err)
	}

	s.logAudit(ctx, "listing_created", listing)

	s.logger.InfoContext(ctx, "listing created",
		slog.String("listing_id", listing.ID),
		slog.String("seller_id", in.SellerID),
		slog.String("listing_type", string(in.Type)),
	)

	return listing, nil
}

// Publish moves a listing to ACTIVE. Only the owning seller or an admin may
// publish.
func (s *ListingService) Publish(ctx context.Context, id string, ident domain.Identity) (domain.Listing, error) {
	return s.setStatus(ctx, id, ident, domain.ListingStatusActive, "listing_published")
}

// Pause moves a listing to PAUSED, hiding it from new orders while keeping
// existing orders alive.
func (s *ListingService) Pause(ctx context.Context, id string, ident domain.Identity) (domain.Listing, error) {
	return s.setStatus(ctx, id, ident, domain.ListingStatusPaused, "listing_paused")
}

func (s *ListingService) setStatus(ctx context.Context, id string, ident domain.Identity, status domain.ListingStatus, event string) (domain.Listing, error) {
	listing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if listing.SellerID != ident.UserID && !ident.IsAdmin() {
		return domain.Listing{}, domain.ErrForbidden
	}
	if listing.IsDeleted {
		return domain.Listing{}, domain.ErrNotFound
	}

	updated, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Listing{}, err
	}
	s.invalidate(ctx, id)
	s.logAudit(ctx, event, updated)

	s.logger.InfoContext(ctx, "listing status updated",
		slog.String("listing_id", id),
		slog.String("status", string(status)),
	)

	return updated, nil
}

// SetBlocked is the admin moderation switch. Blocked listings stay visible
// to their owner but cannot receive orders.
func (s *ListingService) SetBlocked(ctx context.Context, id string, ident domain.Identity, blocked bool) (domain.Listing, error) {
	if !ident.IsAdmin() {
		return domain.Listing{}, domain.ErrForbidden
	}

	updated, err := s.store.SetBlocked(ctx, id, blocked)
	if err != nil {
		return domain.Listing{}, err
	}
	s.invalidate(ctx, id)

	event := "listing_unblocked"
	if blocked {
		event = "listing_blocked"
	}
	s.logAudit(ctx, event, updated)

	s.logger.InfoContext(ctx, "listing block flag updated",
		slog.String("listing_id", id),
		slog.Bool("blocked", blocked),
		slog.String("admin_id", ident.UserID),
	)

	return updated, nil
}

// SoftDelete marks the listing deleted. The row is kept so historical
// orders keep resolving their listing.
func (s *ListingService) SoftDelete(ctx context.Context, id string, ident domain.Identity) error {
	listing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != ident.UserID && !ident.IsAdmin() {
		return domain.ErrForbidden
	}

	if err := s.store.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logAudit(ctx, "listing_deleted", listing)

	s.logger.InfoContext(ctx, "listing deleted",
		slog.String("listing_id", id),
		slog.String("user_id", ident.UserID),
	)

	return nil
}

// GetByID returns the listing through the cache regardless of its state.
// It exists for internal consumers (the order lifecycle) that must resolve
// listings for historical orders too.
func (s *ListingService) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	if s.cache != nil {
		if listing, err := s.cache.Get(ctx, id); err == nil {
			return listing, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "listing cache read failed",
				slog.String("listing_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	listing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listing); err != nil {
			s.logger.WarnContext(ctx, "listing cache write failed",
				slog.String("listing_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return listing, nil
}

// Get returns the listing for an external caller, applying visibility: a
// deleted or blocked listing is only visible to its owner and admins, and
// reads as ErrNotFound for everyone else.
func (s *ListingService) Get(ctx context.Context, id string, ident domain.Identity) (domain.Listing, error) {
	listing, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	if listing.IsDeleted || listing.IsBlocked {
		if listing.SellerID != ident.UserID && !ident.IsAdmin() {
			return domain.Listing{}, domain.ErrNotFound
		}
	}
	return listing, nil
}

// ListActive returns purchasable listings, newest first.
func (s *ListingService) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Listing, error) {
	listings, err := s.store.ListActive(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing_service: list active: %w", err)
	}
	return listings, nil
}

func (s *ListingService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "listing cache invalidate failed",
			slog.String("listing_id", id),
			slog.String("error", err.Error()),
		)
	}
}

func (s *ListingService) logAudit(ctx context.Context, event string, listing domain.Listing) {
	if s.audit == nil {
		return
	}
	err := s.audit.Log(ctx, event, map[string]any{
		"listing_id": listing.ID,
		"seller_id":  listing.SellerID,
		"status":     string(listing.Status),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "audit log failed",
			slog.String("event", event),
			slog.String("listing_id", listing.ID),
			slog.String("error", err.Error()),
		)
	}
}
