package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
)

// ListingStore implements domain.ListingStore using PostgreSQL.
type ListingStore struct {
	pool *pgxpool.Pool
}

var _ domain.ListingStore = (*ListingStore)(nil)

// NewListingStore creates a new ListingStore backed by the given pool.
func NewListingStore(pool *pgxpool.Pool) *ListingStore {
	return &ListingStore{pool: pool}
}

const listingSelectCols = `id, seller_id, title, description, listing_type,
	price::text, status, is_deleted, is_blocked, created_at, updated_at`

func scanListingFromRow(
	scanner interface{ Scan(dest ...any) error },
) (domain.Listing, error) {
	var l domain.Listing
	var listingType, status string
	var priceStr *string

	err := scanner.Scan(
		&l.ID, &l.SellerID, &l.Title, &l.Description, &listingType,
		&priceStr, &status, &l.IsDeleted, &l.IsBlocked, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return domain.Listing{}, err
	}

	l.Type = domain.ListingType(listingType)
	l.Status = domain.ListingStatus(status)
	if priceStr != nil {
		p, err := decimal.NewFromString(*priceStr)
		if err != nil {
			return domain.Listing{}, fmt.Errorf("parse price %q: %w", *priceStr, err)
		}
		l.Price = &p
	}

	return l, nil
}

// Create inserts a new listing.
func (s *ListingStore) Create(ctx context.Context, l domain.Listing) error {
	var priceStr *string
	if l.Price != nil {
		v := l.Price.String()
		priceStr = &v
	}

	const query = `
		INSERT INTO listings (
			id, seller_id, title, description, listing_type,
			price, status, is_deleted, is_blocked, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.pool.Exec(ctx, query,
		l.ID, l.SellerID, l.Title, l.Description, string(l.Type),
		priceStr, string(l.Status), l.IsDeleted, l.IsBlocked, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create listing %s: %w", l.ID, err)
	}
	return nil
}

// GetByID retrieves a single listing by ID, deleted or not.
func (s *ListingStore) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+listingSelectCols+` FROM listings WHERE id = $1`, id)

	l, err := scanListingFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, fmt.Errorf("postgres: get listing %s: %w", id, err)
	}
	return l, nil
}

// ListActive returns purchasable listings, newest first.
func (s *ListingStore) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Listing, error) {
	query := `SELECT ` + listingSelectCols + ` FROM listings
		WHERE status = 'ACTIVE' AND NOT is_deleted AND NOT is_blocked
		ORDER BY created_at DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list active listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListingFromRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// UpdateStatus sets the publication status and returns the updated row.
func (s *ListingStore) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus) (domain.Listing, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE listings
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted
		RETURNING `+listingSelectCols,
		id, string(status),
	)

	l, err := scanListingFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, fmt.Errorf("postgres: update listing status %s: %w", id, err)
	}
	return l, nil
}

// SetBlocked flips the moderation flag and returns the updated row.
func (s *ListingStore) SetBlocked(ctx context.Context, id string, blocked bool) (domain.Listing, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE listings
		SET is_blocked = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+listingSelectCols,
		id, blocked,
	)

	l, err := scanListingFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, fmt.Errorf("postgres: set listing blocked %s: %w", id, err)
	}
	return l, nil
}

// SoftDelete marks the listing deleted. The row stays so historical orders
// keep resolving.
func (s *ListingStore) SoftDelete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE listings
		SET is_deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT is_deleted`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete listing %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
