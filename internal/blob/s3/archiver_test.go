package s3blob

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sellside/marketd/internal/domain"
	"github.com/sellside/marketd/internal/store/memory"
)

// fakeBlobWriter records uploads in memory.
type fakeBlobWriter struct {
	path        string
	contentType string
	data        []byte
	puts        int
}

func (f *fakeBlobWriter) Put(_ context.Context, path string, data io.Reader, contentType string) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.path = path
	f.contentType = contentType
	f.data = body
	f.puts++
	return nil
}

func seedOrder(t *testing.T, store *memory.OrderStore, id string, status domain.OrderStatus, updatedAt time.Time) {
	t.Helper()
	err := store.Create(context.Background(), domain.Order{
		ID:        id,
		ListingID: "listing-" + id,
		BuyerID:   "buyer-" + id,
		SellerID:  "seller-" + id,
		Status:    status,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		t.Fatalf("seed order %s: %v", id, err)
	}
}

func TestArchiveOrders(t *testing.T) {
	store := memory.NewOrderStore()
	audit := memory.NewAuditStore()
	writer := &fakeBlobWriter{}
	archiver := NewArchiver(writer, store, audit)

	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	old := cutoff.Add(-48 * time.Hour)
	recent := cutoff.Add(48 * time.Hour)

	seedOrder(t, store, "a", domain.OrderStatusCompleted, old)
	seedOrder(t, store, "b", domain.OrderStatusCancelled, old.Add(time.Hour))
	seedOrder(t, store, "c", domain.OrderStatusCompleted, recent) // too new
	seedOrder(t, store, "d", domain.OrderStatusRequested, old)    // not terminal

	count, err := archiver.ArchiveOrders(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ArchiveOrders: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if writer.path != "archive/orders/2026-08.jsonl" {
		t.Errorf("path = %s, want archive/orders/2026-08.jsonl", writer.path)
	}
	if writer.contentType != "application/x-ndjson" {
		t.Errorf("content type = %s, want application/x-ndjson", writer.contentType)
	}

	lines := strings.Split(strings.TrimSpace(string(writer.data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("jsonl lines = %d, want 2", len(lines))
	}
	var first domain.Order
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode line 0: %v", err)
	}
	if first.ID != "a" {
		t.Errorf("first archived order = %s, want a (oldest first)", first.ID)
	}

	entries, err := audit.List(context.Background(), domain.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("audit list: %v", err)
	}
	if len(entries) != 1 || entries[0].Event != "archive.orders" {
		t.Errorf("audit entries = %+v, want one archive.orders event", entries)
	}
}

func TestArchiveOrdersNothingToDo(t *testing.T) {
	writer := &fakeBlobWriter{}
	archiver := NewArchiver(writer, memory.NewOrderStore(), nil)

	count, err := archiver.ArchiveOrders(context.Background(), time.Now().UTC())
	if err != nil {
		t.Fatalf("ArchiveOrders: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
	if writer.puts != 0 {
		t.Error("empty archive run still uploaded a file")
	}
}
