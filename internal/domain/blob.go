package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter uploads objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver exports old terminal orders to blob storage. Archived rows are
// not deleted from the primary store; the archive is a cold export.
type Archiver interface {
	ArchiveOrders(ctx context.Context, before time.Time) (int64, error)
}
