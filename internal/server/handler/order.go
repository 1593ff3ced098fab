package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/sellside/marketd/internal/domain"
)

// OrderService defines the methods the order handler requires from the
// service layer.
type OrderService interface {
	CreateOrder(ctx context.Context, listingID, buyerID, message string) (domain.Order, error)
	ProvideQuote(ctx context.Context, orderID, sellerID string, price decimal.Decimal) (domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, ident domain.Identity, target domain.OrderStatus) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID, buyerID string) (domain.Order, error)
	GetOrder(ctx context.Context, orderID string, ident domain.Identity) (domain.Order, error)
	ListBuyerOrders(ctx context.Context, buyerID string, opts domain.ListOpts) ([]domain.Order, error)
	ListSellerOrders(ctx context.Context, sellerID string, opts domain.ListOpts) ([]domain.Order, error)
}

// OrderHandler serves order-related HTTP endpoints.
type OrderHandler struct {
	orders OrderService
	logger *slog.Logger
}

// NewOrderHandler creates an OrderHandler with the given service and logger.
func NewOrderHandler(orders OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

type createOrderRequest struct {
	ListingID string `json:"listing_id"`
	Message   string `json:"message"`
}

// CreateOrder submits a purchase request for a listing.
// POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ListingID == "" {
		writeError(w, http.StatusBadRequest, "listing_id is required")
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req.ListingID, ident.UserID, req.Message)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

type provideQuoteRequest struct {
	Price decimal.Decimal `json:"price"`
}

// ProvideQuote attaches the seller's price to a quote-based order.
// PATCH /api/orders/{id}/quote
func (h *OrderHandler) ProvideQuote(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req provideQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.orders.ProvideQuote(r.Context(), id, ident.UserID, req.Price)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order along its lifecycle.
// PATCH /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), id, ident, domain.OrderStatus(req.Status))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// CancelOrder cancels the buyer's own pending order.
// PATCH /api/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.orders.CancelOrder(r.Context(), id, ident.UserID)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// GetOrder returns one order visible to the caller.
// GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id, ident)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type listOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// ListBuyerOrders returns orders the caller has placed, newest first.
// GET /api/orders/buyer
func (h *OrderHandler) ListBuyerOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListBuyerOrders(r.Context(), ident.UserID, parseListOpts(r))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	writeJSON(w, http.StatusOK, listOrdersResponse{Orders: orders})
}

// ListSellerOrders returns orders the caller has received, newest first.
// GET /api/orders/seller
func (h *OrderHandler) ListSellerOrders(w http.ResponseWriter, r *http.Request) {
	ident, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	orders, err := h.orders.ListSellerOrders(r.Context(), ident.UserID, parseListOpts(r))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}

	writeJSON(w, http.StatusOK, listOrdersResponse{Orders: orders})
}
