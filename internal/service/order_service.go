package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
)

// ListingSource is the narrow read-side view of listings that the order
// lifecycle needs. The cached listing service satisfies it.
type ListingSource interface {
	GetByID(ctx context.Context, id string) (domain.Listing, error)
}

// OrderConfig tunes the order lifecycle service.
type OrderConfig struct {
	// CreateLimitPerMin caps order creation per buyer. Zero disables it.
	CreateLimitPerMin int
	// LockTTL bounds the duplicate-order guard lock held during creation.
	LockTTL time.Duration
}

// OrderService mediates the entire order life from purchase request to
// terminal state, enforcing who may act and when. All status moves go
// through the transition table and are applied as conditional updates in
// the store, so racing requests cannot take the same edge twice.
type OrderService struct {
	orders   domain.OrderStore
	listings ListingSource
	audit    domain.AuditStore
	limiter  domain.RateLimiter
	locks    domain.LockManager
	bus      domain.SignalBus
	cfg      OrderConfig
	logger   *slog.Logger
}

// NewOrderService creates an OrderService. The limiter, lock manager, and
// signal bus are optional; unit tests pass nil to run without Redis.
func NewOrderService(
	orders domain.OrderStore,
	listings ListingSource,
	audit domain.AuditStore,
	limiter domain.RateLimiter,
	locks domain.LockManager,
	bus domain.SignalBus,
	cfg OrderConfig,
	logger *slog.Logger,
) *OrderService {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Second
	}
	return &OrderService{
		orders:   orders,
		listings: listings,
		audit:    audit,
		limiter:  limiter,
		locks:    locks,
		bus:      bus,
		cfg:      cfg,
		logger:   logger.With(slog.String("component", "order_service")),
	}
}

// CreateOrder submits a purchase request from buyerID against a listing.
// For FIXED listings the listing price is snapshotted onto the order; for
// QUOTE listings the order starts without a price and waits for the
// seller's quote.
func (s *OrderService) CreateOrder(ctx context.Context, listingID, buyerID, message string) (domain.Order, error) {
	if s.limiter != nil && s.cfg.CreateLimitPerMin > 0 {
		allowed, err := s.limiter.Allow(ctx, "orders:create:"+buyerID, s.cfg.CreateLimitPerMin, time.Minute)
		if err != nil {
			return domain.Order{}, fmt.Errorf("order_service: rate limiter: %w", err)
		}
		if !allowed {
			return domain.Order{}, domain.ErrRateLimited
		}
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, domain.ErrListingUnavailable
		}
		return domain.Order{}, fmt.Errorf("order_service: load listing %s: %w", listingID, err)
	}
	if !listing.Purchasable() {
		return domain.Order{}, domain.ErrListingUnavailable
	}
	if listing.SellerID == buyerID {
		return domain.Order{}, domain.ErrSelfPurchase
	}

	// Guard the duplicate check against a concurrent create by the same
	// buyer for the same listing. The partial unique index in Postgres is
	// the hard backstop; the lock turns the race into a friendly error.
	if s.locks != nil {
		unlock, err := s.locks.Acquire(ctx, "orders:create:"+buyerID+":"+listingID, s.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrLockHeld) {
				return domain.Order{}, domain.ErrDuplicateOrder
			}
			return domain.Order{}, fmt.Errorf("order_service: acquire create lock: %w", err)
		}
		defer unlock()
	}

	active, err := s.orders.HasActive(ctx, buyerID, listingID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order_service: duplicate check: %w", err)
	}
	if active {
		return domain.Order{}, domain.ErrDuplicateOrder
	}

	var offerPrice *decimal.Decimal
	if listing.Type == domain.ListingTypeFixed && listing.Price != nil {
		p := *listing.Price
		offerPrice = &p
	}

	now := time.Now().UTC()
	order := domain.Order{
		ID:         uuid.New().String(),
		ListingID:  listingID,
		BuyerID:    buyerID,
		SellerID:   listing.SellerID,
		OfferPrice: offerPrice,
		Message:    SanitizeText(message),
		Status:     domain.OrderStatusRequested,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("order_service: create order: %w", err)
	}

	s.recordMutation(ctx, "order_requested", order)

	s.logger.InfoContext(ctx, "order created",
		slog.String("order_id", order.ID),
		slog.String("listing_id", listingID),
		slog.String("buyer_id", buyerID),
		slog.String("listing_type", string(listing.Type)),
	)

	return order, nil
}

// ProvideQuote attaches a price to a quote-based order. Only the order's
// seller may quote, only while the order is still REQUESTED, and only once.
// The order status is unchanged; acceptance is a separate buyer action.
func (s *OrderService) ProvideQuote(ctx context.Context, orderID, sellerID string, price decimal.Decimal) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.SellerID != sellerID {
		return domain.Order{}, domain.ErrForbidden
	}
	if order.Quoted() {
		return domain.Order{}, domain.ErrAlreadyQuoted
	}
	if order.Status != domain.OrderStatusRequested {
		return domain.Order{}, domain.ErrInvalidState
	}
	if !price.IsPositive() {
		return domain.Order{}, domain.ErrInvalidPrice
	}

	updated, err := s.orders.SetOfferPrice(ctx, orderID, price)
	if err != nil {
		return domain.Order{}, err
	}

	s.recordMutation(ctx, "quote_provided", updated)

	s.logger.InfoContext(ctx, "quote provided",
		slog.String("order_id", orderID),
		slog.String("seller_id", sellerID),
		slog.String("offer_price", price.String()),
	)

	return updated, nil
}

// UpdateStatus moves an order along the transition graph on behalf of the
// caller. Admin identities skip the role predicates but are still bound by
// the graph: no caller can resurrect a terminal order.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, ident domain.Identity, target domain.OrderStatus) (domain.Order, error) {
	if !target.Valid() {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	listing, err := s.listings.GetByID(ctx, order.ListingID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order_service: load listing %s: %w", order.ListingID, err)
	}

	act := actor{
		isBuyer:  order.BuyerID == ident.UserID,
		isSeller: order.SellerID == ident.UserID,
		isAdmin:  ident.IsAdmin(),
	}
	if err := checkTransition(order, listing.Type, target, act); err != nil {
		return domain.Order{}, err
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, order.Status, target)
	if err != nil {
		return domain.Order{}, err
	}

	s.recordMutation(ctx, statusEvent(target), updated)

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("user_id", ident.UserID),
		slog.String("from", string(order.Status)),
		slog.String("to", string(target)),
		slog.Bool("admin", act.isAdmin),
	)

	return updated, nil
}

// CancelOrder is the buyer's narrow pre-acceptance exit: it cancels an
// order that is still REQUESTED. Declining a quote uses the same path.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, buyerID string) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.BuyerID != buyerID {
		return domain.Order{}, domain.ErrForbidden
	}
	if order.Status != domain.OrderStatusRequested {
		return domain.Order{}, domain.ErrInvalidState
	}

	updated, err := s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusRequested, domain.OrderStatusCancelled)
	if err != nil {
		return domain.Order{}, err
	}

	s.recordMutation(ctx, "order_cancelled", updated)

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", orderID),
		slog.String("buyer_id", buyerID),
	)

	return updated, nil
}

// GetOrder returns the order only if the caller is its buyer, its seller,
// or an admin. Anyone else gets ErrNotFound: outsiders cannot learn that
// the order exists at all.
func (s *OrderService) GetOrder(ctx context.Context, orderID string, ident domain.Identity) (domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !ident.IsAdmin() && order.BuyerID != ident.UserID && order.SellerID != ident.UserID {
		return domain.Order{}, domain.ErrNotFound
	}
	return order, nil
}

// ListBuyerOrders returns orders the caller sent, newest first.
func (s *OrderService) ListBuyerOrders(ctx context.Context, buyerID string, opts domain.ListOpts) ([]domain.Order, error) {
	orders, err := s.orders.ListByBuyer(ctx, buyerID, opts)
	if err != nil {
		return nil, fmt.Errorf("order_service: list buyer orders: %w", err)
	}
	return orders, nil
}

// ListSellerOrders returns orders the caller received, newest first.
func (s *OrderService) ListSellerOrders(ctx context.Context, sellerID string, opts domain.ListOpts) ([]domain.Order, error) {
	orders, err := s.orders.ListBySeller(ctx, sellerID, opts)
	if err != nil {
		return nil, fmt.Errorf("order_service: list seller orders: %w", err)
	}
	return orders, nil
}

// statusEvent names the bus/audit event for a transition target.
func statusEvent(target domain.OrderStatus) string {
	switch target {
	case domain.OrderStatusAccepted:
		return "order_accepted"
	case domain.OrderStatusRejected:
		return "order_rejected"
	case domain.OrderStatusCompleted:
		return "order_completed"
	case domain.OrderStatusCancelled:
		return "order_cancelled"
	default:
		return "order_updated"
	}
}

// recordMutation writes the audit entry and publishes the event for a
// successful order mutation. Both are best-effort: the mutation already
// committed, so failures here are logged, not returned.
func (s *OrderService) recordMutation(ctx context.Context, event string, order domain.Order) {
	if s.audit != nil {
		detail := map[string]any{
			"order_id":   order.ID,
			"listing_id": order.ListingID,
			"buyer_id":   order.BuyerID,
			"seller_id":  order.SellerID,
			"status":     string(order.Status),
		}
		if order.OfferPrice != nil {
			detail["offer_price"] = order.OfferPrice.String()
		}
		if err := s.audit.Log(ctx, event, detail); err != nil {
			s.logger.WarnContext(ctx, "audit log failed",
				slog.String("event", event),
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if s.bus != nil {
		ev := orderEvent{
			Event:     event,
			OrderID:   order.ID,
			ListingID: order.ListingID,
			BuyerID:   order.BuyerID,
			SellerID:  order.SellerID,
			Status:    string(order.Status),
		}
		if order.OfferPrice != nil {
			ev.OfferPrice = order.OfferPrice.String()
		}
		payload, _ := json.Marshal(ev)
		if err := s.bus.Publish(ctx, "orders", payload); err != nil {
			s.logger.WarnContext(ctx, "publish event failed",
				slog.String("event", event),
				slog.String("order_id", order.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// orderEvent is the JSON payload published on the "orders" channel.
type orderEvent struct {
	Event      string `json:"event"`
	OrderID    string `json:"order_id"`
	ListingID  string `json:"listing_id"`
	BuyerID    string `json:"buyer_id"`
	SellerID   string `json:"seller_id"`
	Status     string `json:"status"`
	OfferPrice string `json:"offer_price,omitempty"`
}
