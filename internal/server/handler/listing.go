package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
	"github.com/sellside/marketd/internal/service"
)

// ListingService defines the methods the listing handler requires from the
// service layer.
type ListingService interface {
	Create(ctx context.Context, in service.CreateListingInput) (domain.Listing, error)
	Publish(ctx context.Context, id string, ident domain.Identity) (domain.Listing, error)
	Pause(ctx context.Context, id string, ident domain.Identity) (domain.Listing, error)
	SetBlocked(ctx context.Context, id string, ident domain.Identity, blocked bool) (domain.Listing, error)
	SoftDelete(ctx context.Context, id string, ident domain.Identity) error
	Get(ctx context.Context, id string, ident domain.Identity) (domain.Listing, error)
	ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Listing, error)
}

// ListingHandler serves listing-related HTTP endpoints.
type ListingHandler struct {
	listings ListingService
	logger   *slog.Logger
}

// NewListingHandler creates a ListingHandler with the given service and
// logger.
func NewListingHandler(listings ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		listings: listings,
		logger:   logger,
	}
}

type createListingRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        string           `json:"listing_type"`
	Price       *decimal.Decimal `json:"price"`
}

// CreateListing creates a new DRAFT listing owned by the caller.
// POST /api/listings
func (h *ListingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	listing, err := h.listings.Create(r.Context(), service.CreateListingInput{
		SellerID:    ident.UserID,
		Title:       req.Title,
		Description: req.Description,
		Type:        domain.ListingType(req.Type),
		Price:       req.Price,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, listing)
}

// GetListing returns a single listing, subject to visibility rules.
// GET /api/listings/{id}
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	// Anonymous browsing is allowed; visibility falls back to public rules.
	ident, _ := requireOptionalIdentity(r)

	listing, err := h.listings.Get(r.Context(), id, ident)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

type listListingsResponse struct {
	Listings []domain.Listing `json:"listings"`
}

// ListListings returns purchasable listings, newest first.
// GET /api/listings
func (h *ListingHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.ListActive(r.Context(), parseListOpts(r))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}

	writeJSON(w, http.StatusOK, listListingsResponse{Listings: listings})
}

// PublishListing makes a listing ACTIVE.
// PATCH /api/listings/{id}/publish
func (h *ListingHandler) PublishListing(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.listings.Publish)
}

// PauseListing hides a listing from new orders.
// PATCH /api/listings/{id}/pause
func (h *ListingHandler) PauseListing(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.listings.Pause)
}

func (h *ListingHandler) setStatus(
	w http.ResponseWriter,
	r *http.Request,
	mutate func(ctx context.Context, id string, ident domain.Identity) (domain.Listing, error),
) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	listing, err := mutate(r.Context(), id, ident)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

type blockListingRequest struct {
	Blocked bool `json:"blocked"`
}

// BlockListing flips the admin moderation flag.
// PATCH /api/listings/{id}/block
func (h *ListingHandler) BlockListing(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	var req blockListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	listing, err := h.listings.SetBlocked(r.Context(), id, ident, req.Blocked)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// DeleteListing soft-deletes the caller's listing.
// DELETE /api/listings/{id}
func (h *ListingHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing listing id")
		return
	}

	if err := h.listings.SoftDelete(r.Context(), id, ident); err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "deleted",
		"listing_id": id,
	})
}
