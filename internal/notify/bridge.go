package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/sellside/marketd/internal/domain"
)

// busOrderEvent mirrors the JSON payload published on the "orders" bus
// channel by the order service.
type busOrderEvent struct {
	Event      string `json:"event"`
	OrderID    string `json:"order_id"`
	ListingID  string `json:"listing_id"`
	BuyerID    string `json:"buyer_id"`
	SellerID   string `json:"seller_id"`
	Status     string `json:"status"`
	OfferPrice string `json:"offer_price,omitempty"`
}

// Bridge subscribes to the order event channel on the signal bus and
// forwards each event through the Notifier. It decouples the lifecycle
// services from notification delivery: services publish, the bridge
// consumes.
type Bridge struct {
	bus      domain.SignalBus
	notifier *Notifier
	logger   *slog.Logger
}

// NewBridge creates a Bridge between the given bus and notifier.
func NewBridge(bus domain.SignalBus, notifier *Notifier, logger *slog.Logger) *Bridge {
	return &Bridge{
		bus:      bus,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "notify_bridge")),
	}
}

// Run consumes order events until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	msgCh, err := b.bus.Subscribe(ctx, "orders")
	if err != nil {
		return fmt.Errorf("notify: subscribe orders: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-msgCh:
			if !ok {
				return nil
			}
			b.handle(ctx, data)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, data []byte) {
	var wire busOrderEvent
	if err := json.Unmarshal(data, &wire); err != nil {
		b.logger.WarnContext(ctx, "malformed order event",
			slog.String("error", err.Error()),
		)
		return
	}

	ev := Event{
		Name:       wire.Event,
		OrderID:    wire.OrderID,
		ListingID:  wire.ListingID,
		BuyerID:    wire.BuyerID,
		SellerID:   wire.SellerID,
		Status:     wire.Status,
		OfferPrice: wire.OfferPrice,
	}

	if err := b.notifier.Notify(ctx, ev); err != nil {
		b.logger.WarnContext(ctx, "notification delivery failed",
			slog.String("event", ev.Name),
			slog.String("order_id", ev.OrderID),
			slog.String("error", err.Error()),
		)
	}
}
