// Package notify delivers order lifecycle notifications to sellers and
// operators. Events from the signal bus are fanned out to the registered
// senders (Telegram, Discord), each of which renders the order fields in
// its own channel format. The event filter lets a deployment subscribe to
// only the lifecycle steps it cares about.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is one delivery channel for order events.
type Sender interface {
	// Send renders and delivers a single order event.
	Send(ctx context.Context, ev Event) error
	// Name identifies the channel, e.g. "telegram".
	Name() string
}

// Notifier fans order events out to its senders, filtered by event name.
type Notifier struct {
	senders []Sender
	events  map[string]bool // allowed event names
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders. Only
// events named in the events slice are forwarded; an empty slice allows
// every event.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers the event to every sender, unless the event name is
// filtered out. Individual sender failures are collected so one dead
// webhook does not block the others.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	if len(n.events) > 0 && !n.events[ev.Name] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", ev.Name),
		)
		return nil
	}
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, ev); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", ev.Name),
				slog.String("order_id", ev.OrderID),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("event", ev.Name),
				slog.String("order_id", ev.OrderID),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
