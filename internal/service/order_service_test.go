package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
	"github.com/sellside/marketd/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type orderFixture struct {
	orders   *memory.OrderStore
	listings *memory.ListingStore
	audit    *memory.AuditStore
	svc      *OrderService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	orders := memory.NewOrderStore()
	listings := memory.NewListingStore()
	audit := memory.NewAuditStore()
	listingSvc := NewListingService(listings, nil, nil, nil, testLogger())
	svc := NewOrderService(orders, listingSvc, audit, nil, nil, nil, OrderConfig{}, testLogger())

	return &orderFixture{
		orders:   orders,
		listings: listings,
		audit:    audit,
		svc:      svc,
	}
}

func (f *orderFixture) addListing(t *testing.T, l domain.Listing) domain.Listing {
	t.Helper()
	if l.ID == "" {
		l.ID = "listing-" + l.SellerID
	}
	if l.Status == "" {
		l.Status = domain.ListingStatusActive
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	if err := f.listings.Create(context.Background(), l); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return l
}

func fixedListing(sellerID, price string) domain.Listing {
	p := decimal.RequireFromString(price)
	return domain.Listing{
		SellerID: sellerID,
		Title:    "Pallet of widgets",
		Type:     domain.ListingTypeFixed,
		Price:    &p,
	}
}

func quoteListing(sellerID string) domain.Listing {
	return domain.Listing{
		SellerID: sellerID,
		Title:    "Custom tooling run",
		Type:     domain.ListingTypeQuote,
	}
}

func TestCreateOrderFixedSnapshotsPrice(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "49.99"))

	order, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "need this by friday")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if order.Status != domain.OrderStatusRequested {
		t.Errorf("status = %s, want REQUESTED", order.Status)
	}
	if order.OfferPrice == nil {
		t.Fatal("offer price not snapshotted from fixed listing")
	}
	if got := order.OfferPrice.String(); got != "49.99" {
		t.Errorf("offer price = %s, want 49.99", got)
	}
	if order.SellerID != "seller-1" {
		t.Errorf("seller id = %s, want seller-1", order.SellerID)
	}
}

func TestCreateOrderPriceSnapshotSurvivesListingChange(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "10.00"))

	order, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// Mutating the seeded listing price must not change the snapshot.
	newPrice := decimal.RequireFromString("99.00")
	listing.Price = &newPrice
	if err := f.listings.Create(context.Background(), listing); err != nil {
		t.Fatalf("reseed listing: %v", err)
	}

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got := stored.OfferPrice.String(); got != "10" {
		t.Errorf("snapshot price = %s, want 10", got)
	}
}

func TestCreateOrderQuoteStartsUnpriced(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, quoteListing("seller-1"))

	order, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.OfferPrice != nil {
		t.Errorf("quote order created with price %s, want none", order.OfferPrice)
	}
	if order.Quoted() {
		t.Error("fresh quote order reports Quoted() = true")
	}
}

func TestCreateOrderSanitizesMessage(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "5.00"))

	order, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1",
		`  <script>alert(1)</script>please ship fast  `)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Message != "please ship fast" {
		t.Errorf("message = %q, want sanitized plain text", order.Message)
	}
}

func TestCreateOrderSelfPurchase(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "5.00"))

	_, err := f.svc.CreateOrder(context.Background(), listing.ID, "seller-1", "")
	if !errors.Is(err, domain.ErrSelfPurchase) {
		t.Errorf("err = %v, want ErrSelfPurchase", err)
	}
}

func TestCreateOrderDuplicateActive(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "5.00"))

	if _, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", ""); err != nil {
		t.Fatalf("first CreateOrder: %v", err)
	}
	_, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
	if !errors.Is(err, domain.ErrDuplicateOrder) {
		t.Errorf("err = %v, want ErrDuplicateOrder", err)
	}
}

func TestCreateOrderAllowedAfterTerminal(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "5.00"))
	ctx := context.Background()

	first, err := f.svc.CreateOrder(ctx, listing.ID, "buyer-1", "")
	if err != nil {
		t.Fatalf("first CreateOrder: %v", err)
	}
	if _, err := f.svc.CancelOrder(ctx, first.ID, "buyer-1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}

	if _, err := f.svc.CreateOrder(ctx, listing.ID, "buyer-1", ""); err != nil {
		t.Errorf("CreateOrder after cancel: %v, want success", err)
	}
}

func TestCreateOrderListingUnavailable(t *testing.T) {
	tests := []struct {
		name  string
		setup func(domain.Listing) domain.Listing
	}{
		{"draft", func(l domain.Listing) domain.Listing {
			l.Status = domain.ListingStatusDraft
			return l
		}},
		{"paused", func(l domain.Listing) domain.Listing {
			l.Status = domain.ListingStatusPaused
			return l
		}},
		{"deleted", func(l domain.Listing) domain.Listing {
			l.IsDeleted = true
			return l
		}},
		{"blocked", func(l domain.Listing) domain.Listing {
			l.IsBlocked = true
			return l
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			listing := f.addListing(t, tt.setup(fixedListing("seller-1", "5.00")))

			_, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
			if !errors.Is(err, domain.ErrListingUnavailable) {
				t.Errorf("err = %v, want ErrListingUnavailable", err)
			}
		})
	}

	t.Run("missing", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.CreateOrder(context.Background(), "no-such-listing", "buyer-1", "")
		if !errors.Is(err, domain.ErrListingUnavailable) {
			t.Errorf("err = %v, want ErrListingUnavailable", err)
		}
	})
}

func TestProvideQuote(t *testing.T) {
	price := decimal.RequireFromString("120.50")

	t.Run("success keeps status requested", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, quoteListing("seller-1"))
		order, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
		if err != nil {
			t.Fatalf("CreateOrder: %v", err)
		}

		quoted, err := f.svc.ProvideQuote(context.Background(), order.ID, "seller-1", price)
		if err != nil {
			t.Fatalf("ProvideQuote: %v", err)
		}
		if quoted.Status != domain.OrderStatusRequested {
			t.Errorf("status = %s, want REQUESTED", quoted.Status)
		}
		if quoted.OfferPrice == nil || !quoted.OfferPrice.Equal(price) {
			t.Errorf("offer price = %v, want %s", quoted.OfferPrice, price)
		}
	})

	t.Run("non seller forbidden", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, quoteListing("seller-1"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")

		_, err := f.svc.ProvideQuote(context.Background(), order.ID, "someone-else", price)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("second quote rejected", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, quoteListing("seller-1"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")

		if _, err := f.svc.ProvideQuote(context.Background(), order.ID, "seller-1", price); err != nil {
			t.Fatalf("first quote: %v", err)
		}
		_, err := f.svc.ProvideQuote(context.Background(), order.ID, "seller-1", decimal.RequireFromString("99"))
		if !errors.Is(err, domain.ErrAlreadyQuoted) {
			t.Errorf("err = %v, want ErrAlreadyQuoted", err)
		}
	})

	t.Run("cancelled order rejects quote", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, quoteListing("seller-1"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
		if _, err := f.svc.CancelOrder(context.Background(), order.ID, "buyer-1"); err != nil {
			t.Fatalf("CancelOrder: %v", err)
		}

		_, err := f.svc.ProvideQuote(context.Background(), order.ID, "seller-1", price)
		if !errors.Is(err, domain.ErrInvalidState) {
			t.Errorf("err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("non positive price", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, quoteListing("seller-1"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")

		for _, bad := range []string{"0", "-1.50"} {
			_, err := f.svc.ProvideQuote(context.Background(), order.ID, "seller-1", decimal.RequireFromString(bad))
			if !errors.Is(err, domain.ErrInvalidPrice) {
				t.Errorf("price %s: err = %v, want ErrInvalidPrice", bad, err)
			}
		}
	})

	t.Run("missing order", func(t *testing.T) {
		f := newOrderFixture(t)
		_, err := f.svc.ProvideQuote(context.Background(), "no-such-order", "seller-1", price)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func ident(userID string) domain.Identity {
	return domain.Identity{UserID: userID, Role: domain.RoleUser}
}

func adminIdent(userID string) domain.Identity {
	return domain.Identity{UserID: userID, Role: domain.RoleAdmin}
}

func TestUpdateStatusFixedOrderMatrix(t *testing.T) {
	tests := []struct {
		name    string
		ident   domain.Identity
		target  domain.OrderStatus
		wantErr error
	}{
		{"seller accepts", ident("seller-1"), domain.OrderStatusAccepted, nil},
		{"buyer cannot accept", ident("buyer-1"), domain.OrderStatusAccepted, domain.ErrForbidden},
		{"admin accepts", adminIdent("admin-1"), domain.OrderStatusAccepted, nil},
		{"seller rejects", ident("seller-1"), domain.OrderStatusRejected, nil},
		{"buyer cannot reject", ident("buyer-1"), domain.OrderStatusRejected, domain.ErrForbidden},
		{"buyer cancels", ident("buyer-1"), domain.OrderStatusCancelled, nil},
		{"seller cannot cancel", ident("seller-1"), domain.OrderStatusCancelled, domain.ErrForbidden},
		{"outsider cannot accept", ident("stranger"), domain.OrderStatusAccepted, domain.ErrForbidden},
		{"no edge to completed from requested", ident("seller-1"), domain.OrderStatusCompleted, domain.ErrInvalidTransition},
		{"cannot return to requested", ident("seller-1"), domain.OrderStatusRequested, domain.ErrInvalidTransition},
		{"unknown target", ident("seller-1"), domain.OrderStatus("SHIPPED"), domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(t)
			listing := f.addListing(t, fixedListing("seller-1", "5.00"))
			order, err := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
			if err != nil {
				t.Fatalf("CreateOrder: %v", err)
			}

			updated, err := f.svc.UpdateStatus(context.Background(), order.ID, tt.ident, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if updated.Status != tt.target {
				t.Errorf("status = %s, want %s", updated.Status, tt.target)
			}
		})
	}
}

func TestUpdateStatusQuoteAcceptance(t *testing.T) {
	price := decimal.RequireFromString("75.00")

	t.Run("unquoted accept blocked for everyone", func(t *testing.T) {
		for _, id := range []domain.Identity{ident("buyer-1"), ident("seller-1"), adminIdent("admin-1")} {
			f := newOrderFixture(t)
			listing := f.addListing(t, quoteListing("seller-1"))
			order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")

			_, err := f.svc.UpdateStatus(context.Background(), order.ID, id, domain.OrderStatusAccepted)
			if !errors.Is(err, domain.ErrInvalidState) {
				t.Errorf("%s: err = %v, want ErrInvalidState", id.UserID, err)
			}
		}
	})

	t.Run("buyer accepts quoted order", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, quoteListing("seller-1"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
		if _, err := f.svc.ProvideQuote(context.Background(), order.ID, "seller-1", price); err != nil {
			t.Fatalf("ProvideQuote: %v", err)
		}

		updated, err := f.svc.UpdateStatus(context.Background(), order.ID, ident("buyer-1"), domain.OrderStatusAccepted)
		if err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
		if updated.Status != domain.OrderStatusAccepted {
			t.Errorf("status = %s, want ACCEPTED", updated.Status)
		}
	})

	t.Run("seller cannot accept own quote", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, quoteListing("seller-1"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
		if _, err := f.svc.ProvideQuote(context.Background(), order.ID, "seller-1", price); err != nil {
			t.Fatalf("ProvideQuote: %v", err)
		}

		_, err := f.svc.UpdateStatus(context.Background(), order.ID, ident("seller-1"), domain.OrderStatusAccepted)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})
}

func TestUpdateStatusCompletion(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "5.00"))
	ctx := context.Background()
	order, _ := f.svc.CreateOrder(ctx, listing.ID, "buyer-1", "")

	if _, err := f.svc.UpdateStatus(ctx, order.ID, ident("seller-1"), domain.OrderStatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Buyer cannot complete; only the seller marks fulfilment.
	if _, err := f.svc.UpdateStatus(ctx, order.ID, ident("buyer-1"), domain.OrderStatusCompleted); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("buyer complete: err = %v, want ErrForbidden", err)
	}

	updated, err := f.svc.UpdateStatus(ctx, order.ID, ident("seller-1"), domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Errorf("status = %s, want COMPLETED", updated.Status)
	}
}

func TestUpdateStatusTerminalOrdersAreImmutable(t *testing.T) {
	terminalSetups := []struct {
		name  string
		setup func(t *testing.T, f *orderFixture, orderID string)
	}{
		{"rejected", func(t *testing.T, f *orderFixture, orderID string) {
			if _, err := f.svc.UpdateStatus(context.Background(), orderID, ident("seller-1"), domain.OrderStatusRejected); err != nil {
				t.Fatalf("reject: %v", err)
			}
		}},
		{"cancelled", func(t *testing.T, f *orderFixture, orderID string) {
			if _, err := f.svc.CancelOrder(context.Background(), orderID, "buyer-1"); err != nil {
				t.Fatalf("cancel: %v", err)
			}
		}},
		{"completed", func(t *testing.T, f *orderFixture, orderID string) {
			ctx := context.Background()
			if _, err := f.svc.UpdateStatus(ctx, orderID, ident("seller-1"), domain.OrderStatusAccepted); err != nil {
				t.Fatalf("accept: %v", err)
			}
			if _, err := f.svc.UpdateStatus(ctx, orderID, ident("seller-1"), domain.OrderStatusCompleted); err != nil {
				t.Fatalf("complete: %v", err)
			}
		}},
	}

	for _, ts := range terminalSetups {
		t.Run(ts.name, func(t *testing.T) {
			f := newOrderFixture(t)
			listing := f.addListing(t, fixedListing("seller-1", "5.00"))
			order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")
			ts.setup(t, f, order.ID)

			// Even the admin cannot move a terminal order.
			for _, target := range []domain.OrderStatus{
				domain.OrderStatusRequested,
				domain.OrderStatusAccepted,
				domain.OrderStatusCompleted,
			} {
				_, err := f.svc.UpdateStatus(context.Background(), order.ID, adminIdent("admin-1"), target)
				if !errors.Is(err, domain.ErrInvalidTransition) {
					t.Errorf("to %s: err = %v, want ErrInvalidTransition", target, err)
				}
			}
		})
	}
}

func TestUpdateStatusConcurrentEdgeLost(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "5.00"))
	ctx := context.Background()
	order, _ := f.svc.CreateOrder(ctx, listing.ID, "buyer-1", "")

	// Cancel behind the service's back, simulating a racing writer.
	if _, err := f.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusRequested, domain.OrderStatusCancelled); err != nil {
		t.Fatalf("background cancel: %v", err)
	}

	_, err := f.svc.UpdateStatus(ctx, order.ID, ident("seller-1"), domain.OrderStatusAccepted)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelOrder(t *testing.T) {
	t.Run("buyer cancels requested", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, fixedListing("seller-1", "5.00"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")

		updated, err := f.svc.CancelOrder(context.Background(), order.ID, "buyer-1")
		if err != nil {
			t.Fatalf("CancelOrder: %v", err)
		}
		if updated.Status != domain.OrderStatusCancelled {
			t.Errorf("status = %s, want CANCELLED", updated.Status)
		}
	})

	t.Run("only the buyer may cancel", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, fixedListing("seller-1", "5.00"))
		order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")

		_, err := f.svc.CancelOrder(context.Background(), order.ID, "seller-1")
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("accepted order cannot be cancelled", func(t *testing.T) {
		f := newOrderFixture(t)
		listing := f.addListing(t, fixedListing("seller-1", "5.00"))
		ctx := context.Background()
		order, _ := f.svc.CreateOrder(ctx, listing.ID, "buyer-1", "")
		if _, err := f.svc.UpdateStatus(ctx, order.ID, ident("seller-1"), domain.OrderStatusAccepted); err != nil {
			t.Fatalf("accept: %v", err)
		}

		_, err := f.svc.CancelOrder(ctx, order.ID, "buyer-1")
		if !errors.Is(err, domain.ErrInvalidState) {
			t.Errorf("err = %v, want ErrInvalidState", err)
		}
	})
}

func TestGetOrderVisibility(t *testing.T) {
	f := newOrderFixture(t)
	listing := f.addListing(t, fixedListing("seller-1", "5.00"))
	order, _ := f.svc.CreateOrder(context.Background(), listing.ID, "buyer-1", "")

	tests := []struct {
		name    string
		ident   domain.Identity
		wantErr error
	}{
		{"buyer sees it", ident("buyer-1"), nil},
		{"seller sees it", ident("seller-1"), nil},
		{"admin sees it", adminIdent("admin-1"), nil},
		{"outsider gets not found", ident("stranger"), domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.GetOrder(context.Background(), order.ID, tt.ident)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetOrder: %v", err)
			}
			if got.ID != order.ID {
				t.Errorf("order id = %s, want %s", got.ID, order.ID)
			}
		})
	}
}

func TestListOrdersByParty(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	l1 := f.addListing(t, fixedListing("seller-1", "5.00"))
	l2 := f.addListing(t, domain.Listing{
		ID:       "listing-b",
		SellerID: "seller-2",
		Title:    "Bulk cabling",
		Type:     domain.ListingTypeQuote,
	})

	if _, err := f.svc.CreateOrder(ctx, l1.ID, "buyer-1", ""); err != nil {
		t.Fatalf("order 1: %v", err)
	}
	if _, err := f.svc.CreateOrder(ctx, l2.ID, "buyer-1", ""); err != nil {
		t.Fatalf("order 2: %v", err)
	}

	bought, err := f.svc.ListBuyerOrders(ctx, "buyer-1", domain.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("ListBuyerOrders: %v", err)
	}
	if len(bought) != 2 {
		t.Errorf("buyer orders = %d, want 2", len(bought))
	}

	sold, err := f.svc.ListSellerOrders(ctx, "seller-2", domain.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("ListSellerOrders: %v", err)
	}
	if len(sold) != 1 {
		t.Errorf("seller orders = %d, want 1", len(sold))
	}
}

func TestOrderMutationsAreAudited(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	listing := f.addListing(t, quoteListing("seller-1"))

	order, _ := f.svc.CreateOrder(ctx, listing.ID, "buyer-1", "")
	if _, err := f.svc.ProvideQuote(ctx, order.ID, "seller-1", decimal.RequireFromString("30")); err != nil {
		t.Fatalf("ProvideQuote: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, order.ID, ident("buyer-1"), domain.OrderStatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	entries, err := f.audit.List(ctx, domain.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("audit entries = %d, want 3", len(entries))
	}
	// Newest first.
	wantEvents := []string{"order_accepted", "quote_provided", "order_requested"}
	for i, want := range wantEvents {
		if entries[i].Event != want {
			t.Errorf("entry %d event = %s, want %s", i, entries[i].Event, want)
		}
	}
}
