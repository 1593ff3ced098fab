package domain

import "errors"

// Recoverable, user-facing errors. Handlers map these to 4xx responses;
// anything else is a 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("order is not in a state that allows this action")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidPrice       = errors.New("price must be a positive amount")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSelfPurchase       = errors.New("cannot purchase your own listing")
	ErrDuplicateOrder     = errors.New("an active order for this listing already exists")
	ErrListingUnavailable = errors.New("listing not found or not active")
	ErrAlreadyQuoted      = errors.New("a quote has already been provided for this order")
	ErrRateLimited        = errors.New("rate limited")
	ErrLockHeld           = errors.New("lock already held")
)
