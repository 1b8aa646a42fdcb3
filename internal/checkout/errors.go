package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrPromoNotFound      = errors.New("promocode not found")
	ErrPromoInvalid       = errors.New("promocode is not applicable")
	ErrReservationFailed  = errors.New("stock reservation conflict")
	ErrAssemblyInvariant  = errors.New("order assembly invariant violated")
	ErrMissingStageOutput = errors.New("pipeline stage ran without its prerequisite")
)

// PromoInvalidReason names the rule a promocode failed.
type PromoInvalidReason string

const (
	PromoInactive       PromoInvalidReason = "inactive"
	PromoUsageExhausted PromoInvalidReason = "usageExhausted"
	PromoBelowMinimum   PromoInvalidReason = "belowMinimum"
)

// InsufficientStockError is returned by stock validation before any pricing work.
type InsufficientStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (requested: %d, available: %d)", e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// PromoInvalidError is returned when a promocode exists but cannot be applied.
type PromoInvalidError struct {
	Code   string
	Reason PromoInvalidReason
}

func (e *PromoInvalidError) Error() string {
	switch e.Reason {
	case PromoInactive:
		return fmt.Sprintf("promocode %s is inactive", e.Code)
	case PromoUsageExhausted:
		return fmt.Sprintf("promocode %s usage limit reached", e.Code)
	case PromoBelowMinimum:
		return fmt.Sprintf("order total does not meet the minimum amount for promocode %s", e.Code)
	}
	return fmt.Sprintf("promocode %s is invalid: %s", e.Code, e.Reason)
}

func (e *PromoInvalidError) Unwrap() error { return ErrPromoInvalid }

// ReservationConflictError means the conditional stock decrement matched no row:
// another checkout took the stock after validation.
type ReservationConflictError struct {
	ProductID string
	Quantity  int
}

func (e *ReservationConflictError) Error() string {
	return fmt.Sprintf("unable to reserve %d unit(s) of product %s", e.Quantity, e.ProductID)
}

func (e *ReservationConflictError) Unwrap() error { return ErrReservationFailed }
