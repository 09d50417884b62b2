package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is an issued payment voucher bundling one or more installments,
// owned by exactly one student. Active coupons transition to Paid or
// Voided; Paid and Voided are terminal for the void workflow.
type Coupon struct {
	ID        uint64
	StudentID uint64
	StatusID  uint64
	GatewayID uint64

	TotalAmount decimal.Decimal
	IsPartial   bool

	GeneratedAt time.Time
	DueDate     time.Time

	GatewayRef     *string
	DocumentURL    *string
	IdempotencyKey *string
	VoidReason     *string

	// Populated by repository joins for read paths.
	StatusName  string
	GatewayName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CouponLineItem snapshots one installment's nominal amount at issuance
// time. Line items are never mutated after creation.
type CouponLineItem struct {
	ID            uint64
	CouponID      uint64
	InstallmentID uint64
	Amount        decimal.Decimal
}
