package service

import (
	"errors"
	"fmt"

	"github.com/campuspay/ms-go-billing/app/entity"
)

var (
	ErrInvalidRequest      = errors.New("invalid request")
	ErrForbidden           = errors.New("forbidden")
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrGatewayNotFound     = errors.New("gateway not found")
	ErrStatusNotFound      = errors.New("status not found")
	// ErrInvalidStatus guards state-machine transitions, e.g. voiding a
	// coupon that is not Active.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrIdempotencyConflict is returned when an issuance loses the
	// idempotency race and the winning row cannot be read back.
	ErrIdempotencyConflict = errors.New("idempotency key conflict")
	ErrCatalogDuplicate    = errors.New("catalog row already exists")
	ErrCatalogInUse        = errors.New("catalog row is in use")

	// Catalog misconfiguration is split per table so an operator can tell
	// which seed is broken.
	ErrCouponCatalogMisconfigured      = errors.New("coupon status catalog is misconfigured")
	ErrInstallmentCatalogMisconfigured = errors.New("installment status catalog is misconfigured")
)

// BookingConflictError reports that a requested installment is already
// covered by an Active coupon. It carries that coupon so callers can offer
// it for reuse or voiding.
type BookingConflictError struct {
	Coupon *entity.Coupon
}

func (e *BookingConflictError) Error() string {
	return fmt.Sprintf("an active coupon (id=%d) already covers one or more of the requested installments", e.Coupon.ID)
}
