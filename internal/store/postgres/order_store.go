package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
)

// OrderStore implements domain.OrderStore using PostgreSQL.
type OrderStore struct {
	pool *pgxpool.Pool
}

var _ domain.OrderStore = (*OrderStore)(nil)

// NewOrderStore creates a new OrderStore backed by the given connection pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// orderSelectCols lists the columns selected when reading orders. The
// numeric price is cast to text so it round-trips through decimal exactly.
const orderSelectCols = `id, listing_id, buyer_id, seller_id,
	offer_price::text, message, status, created_at, updated_at`

func scanOrderFromRow(
	scanner interface{ Scan(dest ...any) error },
) (domain.Order, error) {
	var o domain.Order
	var status string
	var priceStr *string

	err := scanner.Scan(
		&o.ID, &o.ListingID, &o.BuyerID, &o.SellerID,
		&priceStr, &o.Message, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return domain.Order{}, err
	}

	o.Status = domain.OrderStatus(status)
	if priceStr != nil {
		p, err := decimal.NewFromString(*priceStr)
		if err != nil {
			return domain.Order{}, fmt.Errorf("parse offer_price %q: %w", *priceStr, err)
		}
		o.OfferPrice = &p
	}

	return o, nil
}

func scanOrderRows(rows pgx.Rows) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrderFromRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Create inserts a new order. A unique-index violation on the one-active-
// order-per-listing constraint is surfaced as ErrDuplicateOrder.
func (s *OrderStore) Create(ctx context.Context, o domain.Order) error {
	var priceStr *string
	if o.OfferPrice != nil {
		v := o.OfferPrice.String()
		priceStr = &v
	}

	const query = `
		INSERT INTO orders (
			id, listing_id, buyer_id, seller_id,
			offer_price, message, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query,
		o.ID, o.ListingID, o.BuyerID, o.SellerID,
		priceStr, o.Message, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateOrder
		}
		return fmt.Errorf("postgres: create order %s: %w", o.ID, err)
	}
	return nil
}

// GetByID retrieves a single order by ID.
func (s *OrderStore) GetByID(ctx context.Context, id string) (domain.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderSelectCols+` FROM orders WHERE id = $1`, id)

	o, err := scanOrderFromRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("postgres: get order %s: %w", id, err)
	}
	return o, nil
}

// ListByBuyer returns the buyer's orders, newest first.
func (s *OrderStore) ListByBuyer(ctx context.Context, buyerID string, opts domain.ListOpts) ([]domain.Order, error) {
	return s.listByParty(ctx, "buyer_id", buyerID, opts)
}

// ListBySeller returns the seller's incoming orders, newest first.
func (s *OrderStore) ListBySeller(ctx context.Context, sellerID string, opts domain.ListOpts) ([]domain.Order, error) {
	return s.listByParty(ctx, "seller_id", sellerID, opts)
}

func (s *OrderStore) listByParty(ctx context.Context, col, userID string, opts domain.ListOpts) ([]domain.Order, error) {
	query := `SELECT ` + orderSelectCols + ` FROM orders WHERE ` + col + ` = $1 ORDER BY created_at DESC`
	args := []any{userID}
	argIdx := 2

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
		return nil, fmt.Errorf("postgres: list orders by %s: %w", col, err)
	}
	defer rows.Close()

	orders, err := scanOrderRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan orders by %s: %w", col, err)
	}
	return orders, nil
}

// HasActive reports whether the buyer already has a REQUESTED or ACCEPTED
// order for the listing.
func (s *OrderStore) HasActive(ctx context.Context, buyerID, listingID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM orders
			WHERE buyer_id = $1 AND listing_id = $2
			  AND status IN ('REQUESTED', 'ACCEPTED')
		)`, buyerID, listingID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: check active order: %w", err)
	}
	return exists, nil
}

// UpdateStatus moves the order from exactly `from` to `to`. The WHERE
// clause pins the current status, so a racing writer loses cleanly: zero
// rows means the row is gone or no longer in `from`, and a fresh read
// decides which.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus) (domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING `+orderSelectCols,
		id, string(from), string(to),
	)

	o, err := scanOrderFromRow(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("postgres: update order status %s: %w", id, err)
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return domain.Order{}, err
	}
	return domain.Order{}, domain.ErrInvalidState
}

// SetOfferPrice attaches a quote to an order that is still REQUESTED and
// unquoted. Zero rows are classified by re-reading the order.
func (s *OrderStore) SetOfferPrice(ctx context.Context, id string, price decimal.Decimal) (domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders
		SET offer_price = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'REQUESTED' AND offer_price IS NULL
		RETURNING `+orderSelectCols,
		id, price.String(),
	)

	o, err := scanOrderFromRow(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("postgres: set offer price %s: %w", id, err)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if current.Quoted() {
		return domain.Order{}, domain.ErrAlreadyQuoted
	}
	return domain.Order{}, domain.ErrInvalidState
}

// ListTerminalBefore returns orders in a terminal status last updated
// strictly before the cutoff.
func (s *OrderStore) ListTerminalBefore(ctx context.Context, before time.Time) ([]domain.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+orderSelectCols+` FROM orders
		WHERE status IN ('REJECTED', 'COMPLETED', 'CANCELLED')
		  AND updated_at < $1
		ORDER BY updated_at ASC`, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list terminal orders: %w", err)
	}
	defer rows.Close()

	orders, err := scanOrderRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan terminal orders: %w", err)
	}
	return orders, nil
}
