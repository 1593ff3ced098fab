package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
)

func TestCheckTransitionEdges(t *testing.T) {
	buyer := actor{isBuyer: true}
	seller := actor{isSeller: true}
	admin := actor{isAdmin: true}
	outsider := actor{}

	price := decimal.RequireFromString("10")
	requested := domain.Order{Status: domain.OrderStatusRequested}
	quoted := domain.Order{Status: domain.OrderStatusRequested, OfferPrice: &price}
	accepted := domain.Order{Status: domain.OrderStatusAccepted}

	tests := []struct {
		name        string
		order       domain.Order
		listingType domain.ListingType
		target      domain.OrderStatus
		act         actor
		want        error
	}{
		{"fixed accept by seller", requested, domain.ListingTypeFixed, domain.OrderStatusAccepted, seller, nil},
		{"fixed accept by buyer", requested, domain.ListingTypeFixed, domain.OrderStatusAccepted, buyer, domain.ErrForbidden},
		{"fixed accept by admin", requested, domain.ListingTypeFixed, domain.OrderStatusAccepted, admin, nil},

		{"quote accept before quote", requested, domain.ListingTypeQuote, domain.OrderStatusAccepted, buyer, domain.ErrInvalidState},
		{"quote accept before quote by admin", requested, domain.ListingTypeQuote, domain.OrderStatusAccepted, admin, domain.ErrInvalidState},
		{"quote accept by buyer", quoted, domain.ListingTypeQuote, domain.OrderStatusAccepted, buyer, nil},
		{"quote accept by seller", quoted, domain.ListingTypeQuote, domain.OrderStatusAccepted, seller, domain.ErrForbidden},
		{"quote accept by admin", quoted, domain.ListingTypeQuote, domain.OrderStatusAccepted, admin, nil},

		{"reject by seller", requested, domain.ListingTypeFixed, domain.OrderStatusRejected, seller, nil},
		{"reject by buyer", requested, domain.ListingTypeFixed, domain.OrderStatusRejected, buyer, domain.ErrForbidden},
		{"cancel by buyer", requested, domain.ListingTypeFixed, domain.OrderStatusCancelled, buyer, nil},
		{"cancel by seller", requested, domain.ListingTypeFixed, domain.OrderStatusCancelled, seller, domain.ErrForbidden},

		{"complete by seller", accepted, domain.ListingTypeFixed, domain.OrderStatusCompleted, seller, nil},
		{"complete by buyer", accepted, domain.ListingTypeFixed, domain.OrderStatusCompleted, buyer, domain.ErrForbidden},

		{"outsider on valid edge", requested, domain.ListingTypeFixed, domain.OrderStatusAccepted, outsider, domain.ErrForbidden},
		{"missing edge beats role check", accepted, domain.ListingTypeFixed, domain.OrderStatusCancelled, outsider, domain.ErrInvalidTransition},
		{"requested to completed", requested, domain.ListingTypeFixed, domain.OrderStatusCompleted, seller, domain.ErrInvalidTransition},
		{"accepted to rejected", accepted, domain.ListingTypeFixed, domain.OrderStatusRejected, seller, domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTransition(tt.order, tt.listingType, tt.target, tt.act)
			if !errors.Is(err, tt.want) {
				t.Errorf("checkTransition() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	terminal := []domain.OrderStatus{
		domain.OrderStatusRejected,
		domain.OrderStatusCompleted,
		domain.OrderStatusCancelled,
	}
	for key := range transitions {
		for _, from := range terminal {
			if key.from == from {
				t.Errorf("transition table has outgoing edge from terminal status %s", from)
			}
		}
	}
}
