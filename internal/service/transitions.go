package service

import "github.com/sellside/marketd/internal/domain"

// actor describes the caller's relationship to an order. Admins bypass the
// identity predicates but never the transition graph itself.
type actor struct {
	isBuyer  bool
	isSeller bool
	isAdmin  bool
}

// party reports whether the caller has any standing on the order at all.
func (a actor) party() bool {
	return a.isBuyer || a.isSeller || a.isAdmin
}

// transitionKey identifies one edge of the order status graph.
type transitionKey struct {
	from domain.OrderStatus
	to   domain.OrderStatus
}

// transitionRule gates one edge. permitted returns nil when the caller may
// take the edge, domain.ErrForbidden when the caller lacks the required
// role, or domain.ErrInvalidState when a data precondition (e.g. missing
// quote) blocks the edge for everyone.
type transitionRule struct {
	permitted func(order domain.Order, listingType domain.ListingType, act actor) error
}

// transitions is the complete status graph. Any (from, to) pair absent from
// this table is rejected with ErrInvalidTransition, which makes the
// terminal statuses terminal by construction.
var transitions = map[transitionKey]transitionRule{
	{domain.OrderStatusRequested, domain.OrderStatusAccepted}: {
		permitted: func(order domain.Order, listingType domain.ListingType, act actor) error {
			if listingType == domain.ListingTypeQuote {
				if !order.Quoted() {
					// Nobody can accept before the seller quotes.
					return domain.ErrInvalidState
				}
				// Quoted orders are accepted by the buyer; the seller
				// cannot self-accept their own quote.
				if act.isBuyer || act.isAdmin {
					return nil
				}
				return domain.ErrForbidden
			}
			// Fixed-price purchase requests are accepted by the seller.
			if act.isSeller || act.isAdmin {
				return nil
			}
			return domain.ErrForbidden
		},
	},
	{domain.OrderStatusRequested, domain.OrderStatusRejected}: {
		permitted: sellerOnly,
	},
	{domain.OrderStatusRequested, domain.OrderStatusCancelled}: {
		permitted: buyerOnly,
	},
	{domain.OrderStatusAccepted, domain.OrderStatusCompleted}: {
		permitted: sellerOnly,
	},
}

func sellerOnly(_ domain.Order, _ domain.ListingType, act actor) error {
	if act.isSeller || act.isAdmin {
		return nil
	}
	return domain.ErrForbidden
}

func buyerOnly(_ domain.Order, _ domain.ListingType, act actor) error {
	if act.isBuyer || act.isAdmin {
		return nil
	}
	return domain.ErrForbidden
}

// checkTransition validates one status move for the given caller. The edge
// is checked before the role so that an impossible move reads as
// ErrInvalidTransition regardless of who asks.
func checkTransition(order domain.Order, listingType domain.ListingType, target domain.OrderStatus, act actor) error {
	rule, ok := transitions[transitionKey{order.Status, target}]
	if !ok {
		return domain.ErrInvalidTransition
	}
	if !act.party() {
		return domain.ErrForbidden
	}
	return rule.permitted(order, listingType, act)
}
