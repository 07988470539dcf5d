package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors mapped to HTTP responses by the controllers.
var (
	// ErrNotFound covers missing resources and gate failures that surface
	// as 404: unknown ids, empty carts, reviewing without borrow history.
	ErrNotFound = errors.New("resource not found")

	// ErrEmptyCart is returned by checkout when the cart holds no books.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidReview is returned for a malformed review payload.
	ErrInvalidReview = errors.New("invalid review")
)

// UnavailableBooksError aborts a checkout when any cart book has no
// lendable copy. The whole checkout rolls back; the cart is left intact.
type UnavailableBooksError struct {
	Titles []string
}

func (e *UnavailableBooksError) Error() string {
	return fmt.Sprintf("no available copies for: %s", strings.Join(e.Titles, "; "))
}
